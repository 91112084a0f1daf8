package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/geoplusplus/poisson-reconstruction/config"
	"github.com/geoplusplus/poisson-reconstruction/pointio"
	"github.com/geoplusplus/poisson-reconstruction/reconstruct"
	"github.com/geoplusplus/poisson-reconstruction/utils"
)

// ReconstructCmd runs one end-to-end reconstruction: read an oriented point
// file, build and solve the octree, extract the mesh, write it out.
var ReconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Reconstruct a watertight mesh from an oriented point cloud",
	Long: `reconstruct reads an oriented point cloud in "x y z nx ny nz"
ASCII format, runs the screened Poisson reconstruction pipeline, and writes
the resulting mesh as "v x y z" / "f i0 i1 ..." records.`,
	Run: func(cmd *cobra.Command, args []string) {
		inFile, _ := cmd.Flags().GetString("in")
		outFile, _ := cmd.Flags().GetString("out")
		if inFile == "" || outFile == "" {
			fmt.Println("error: --in and --out are required")
			os.Exit(1)
		}

		log, _ := zap.NewDevelopment()
		defer log.Sync()

		cfg := configFromFlags(cmd)
		cfg.Print()

		log.Info("reading points", zap.String("file", inFile))
		stream, err := newASCIIPointStream(inFile)
		if err != nil {
			log.Fatal("failed to open input", zap.Error(err))
		}
		defer stream.Close()

		sink := pointio.NewMemorySink()
		p := reconstruct.NewPipeline(cfg, log)
		if err := p.Run(stream, sink); err != nil {
			log.Fatal("reconstruction failed", zap.Error(err))
		}
		log.Info("reconstruction complete",
			zap.Int("vertices", sink.InCorePointCount()),
			zap.Int("polygons", len(sink.Polygons())),
			zap.String("memory", utils.GetMemUsage()))

		if err := writeASCIIMesh(outFile, sink); err != nil {
			log.Fatal("failed to write output", zap.Error(err))
		}
		log.Info("wrote mesh", zap.String("file", outFile))
	},
}

// configFromFlags builds a config.PoissonConfig from config.Default(),
// overridden by every bound Cobra/Viper flag — the same "parse onto
// defaults, then let flags win" idiom cmd/1D.go and cmd/2D.go apply to
// their own InputParameters structs.
// isoValue is deliberately left out of the viper binding loop below: its
// zero value is a legitimate flag default, so "was it set" has to come from
// cmd.Flags().Changed rather than viper.IsSet, which would see the bound
// default as always present.
func configFromFlags(cmd *cobra.Command) config.PoissonConfig {
	cfg := config.Default()
	cfg.MaxDepth = viper.GetInt("maxDepth")
	cfg.MinDepth = viper.GetInt("minDepth")
	cfg.SplatDepth = viper.GetInt("splatDepth")
	cfg.SamplesPerNode = viper.GetFloat64("samplesPerNode")
	cfg.ScaleFactor = viper.GetFloat64("scaleFactor")
	cfg.UseConfidence = viper.GetBool("useConfidence")
	cfg.UseNormalWeights = viper.GetBool("useNormalWeights")
	cfg.ConstraintWeight = viper.GetFloat64("constraintWeight")
	cfg.AdaptiveExponent = viper.GetInt("adaptiveExponent")
	cfg.BoundaryType = config.BoundaryType(viper.GetString("boundaryType"))
	cfg.SubdivideDepth = viper.GetInt("subdivideDepth")
	cfg.MinIters = viper.GetInt("minIters")
	cfg.MaxSolveDepth = viper.GetInt("maxSolveDepth")
	cfg.FixedIters = viper.GetInt("fixedIters")
	cfg.Accuracy = viper.GetFloat64("accuracy")
	cfg.ShowResidual = viper.GetBool("showResidual")
	if cmd.Flags().Changed("isoValue") {
		v, _ := cmd.Flags().GetFloat64("isoValue")
		cfg.IsoValue = &v
	}
	cfg.NonLinearFit = viper.GetBool("nonLinearFit")
	cfg.PolygonMesh = viper.GetBool("polygonMesh")
	cfg.AddBarycenter = viper.GetBool("addBarycenter")
	cfg.Threads = viper.GetInt("threads")
	return cfg
}

func init() {
	rootCmd.AddCommand(ReconstructCmd)
	def := config.Default()

	ReconstructCmd.Flags().String("in", "", "input point file (x y z nx ny nz per line)")
	ReconstructCmd.Flags().String("out", "", "output mesh file")

	ReconstructCmd.Flags().Int("maxDepth", def.MaxDepth, "maximum octree depth")
	ReconstructCmd.Flags().Int("minDepth", def.MinDepth, "minimum octree depth for adaptive refinement")
	ReconstructCmd.Flags().Int("splatDepth", def.SplatDepth, "depth below which every point is splatted uniformly")
	ReconstructCmd.Flags().Float64("samplesPerNode", def.SamplesPerNode, "target point samples per leaf node")
	ReconstructCmd.Flags().Float64("scaleFactor", def.ScaleFactor, "bounding-box padding factor")
	ReconstructCmd.Flags().Bool("useConfidence", def.UseConfidence, "weight points by input normal magnitude")
	ReconstructCmd.Flags().Bool("useNormalWeights", def.UseNormalWeights, "weight screening samples by normal magnitude")
	ReconstructCmd.Flags().Float64("constraintWeight", def.ConstraintWeight, "screening (point interpolation) term weight; 0 disables")
	ReconstructCmd.Flags().Int("adaptiveExponent", def.AdaptiveExponent, "adaptive octree weighting exponent")
	ReconstructCmd.Flags().String("boundaryType", string(def.BoundaryType), "boundary condition: free, dirichlet, neumann")
	ReconstructCmd.Flags().Int("subdivideDepth", def.SubdivideDepth, "cascaded-solve subdomain subdivision depth")
	ReconstructCmd.Flags().Int("minIters", def.MinIters, "minimum conjugate-gradient iterations per depth")
	ReconstructCmd.Flags().Int("maxSolveDepth", def.MaxSolveDepth, "maximum depth solved; -1 means maxDepth")
	ReconstructCmd.Flags().Int("fixedIters", def.FixedIters, "fixed iteration count; -1 means accuracy-based termination")
	ReconstructCmd.Flags().Float64("accuracy", def.Accuracy, "conjugate-gradient residual accuracy target")
	ReconstructCmd.Flags().Bool("showResidual", def.ShowResidual, "log residual norms during the solve")
	ReconstructCmd.Flags().Float64("isoValue", 0, "iso-value to extract; unset means compute internally")
	ReconstructCmd.Flags().Bool("nonLinearFit", def.NonLinearFit, "use quadratic Hermite root fitting on cube edges")
	ReconstructCmd.Flags().Bool("polygonMesh", def.PolygonMesh, "emit polygon loops instead of triangulating")
	ReconstructCmd.Flags().Bool("addBarycenter", def.AddBarycenter, "triangulate non-triangular loops by fanning from a new barycenter vertex")
	ReconstructCmd.Flags().Int("threads", def.Threads, "worker goroutines for the cascaded solve")

	for _, name := range []string{
		"maxDepth", "minDepth", "splatDepth", "samplesPerNode", "scaleFactor",
		"useConfidence", "useNormalWeights", "constraintWeight", "adaptiveExponent",
		"boundaryType", "subdivideDepth", "minIters", "maxSolveDepth", "fixedIters",
		"accuracy", "showResidual", "nonLinearFit", "polygonMesh", "addBarycenter", "threads",
	} {
		viper.BindPFlag(name, ReconstructCmd.Flags().Lookup(name))
	}
}
