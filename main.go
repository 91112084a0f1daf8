package main

import "github.com/geoplusplus/poisson-reconstruction/cmd"

func main() {
	cmd.Execute()
}
