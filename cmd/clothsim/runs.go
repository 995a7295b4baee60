package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	outPath   string
	frame     int
	node      int
	plotNode  int
	svgWidth  int
	svgHeight int
)

func runsCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and a node's height for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotNode, "node", 0, "node whose height to plot")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, stdout when empty")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored frame, or a node trajectory, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, stdout when empty")
	exportSVGCmd.Flags().IntVar(&frame, "frame", -1, "snapshot index, negative counts from the end")
	exportSVGCmd.Flags().IntVar(&node, "node", -1, "plot this node's height over time instead of the cloth")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	exportOBJCmd := &cobra.Command{
		Use:   "export-obj [run_id]",
		Short: "write a stored frame as a Wavefront OBJ mesh",
		Args:  cobra.ExactArgs(1),
		RunE:  exportOBJ,
	}
	exportOBJCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, stdout when empty")
	exportOBJCmd.Flags().IntVar(&frame, "frame", -1, "snapshot index, negative counts from the end")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation spectrum and phase portrait of a node",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&plotNode, "node", 0, "node to analyse")

	return []*cobra.Command{listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportSVGCmd, exportOBJCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tNODES\tTICKS\tDT\tINTEG\tDRIFT")

	for _, run := range runs {
		drift := fmt.Sprintf("%.6f", run.EnergyDrift)
		if run.Diverged {
			drift = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.TicksTaken,
			run.Dt,
			run.Integrator,
			drift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(result.Energies))

	fmt.Println(asciigraph.Plot(finite(result.Energies),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	))
	fmt.Println()

	if len(result.Positions) < 2 {
		return nil
	}
	if plotNode < 0 || plotNode >= len(result.Positions[0]) {
		return fmt.Errorf("node %d out of range [0, %d)", plotNode, len(result.Positions[0]))
	}
	heights := make([]float64, len(result.Positions))
	for i, snap := range result.Positions {
		heights[i] = snap[plotNode].Y()
	}
	fmt.Println(asciigraph.Plot(finite(heights),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("node %d height", plotNode)),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, times, err := st.LoadPositions(args[0])
	if err != nil {
		return err
	}
	heights := analysis.NodeHeights(snaps, plotNode)
	if len(heights) < 4 {
		return fmt.Errorf("node %d: not enough recorded positions", plotNode)
	}

	fmt.Printf("oscillation analysis: %s\n", meta.ID)
	fmt.Printf("node: %d, samples: %d\n\n", plotNode, len(heights))

	sampleDt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	ps := analysis.PowerSpectrum(heights)
	fmt.Println(asciigraph.Plot(finite(ps[:max(2, len(ps)/4)]),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (height)"),
	))
	fmt.Println()

	freq, _ := analysis.DominantFrequency(heights, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1/freq)
	}

	mean := 0.0
	for _, h := range heights {
		mean += h
	}
	mean /= float64(len(heights))
	fmt.Printf("upward crossings of mean height: %d\n\n", len(analysis.Crossings(heights, times, mean)))

	if portrait := analysis.NodePhase(snaps, times, plotNode); portrait != nil {
		fmt.Println("phase portrait (height vs vertical velocity):")
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 60, 16))
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSONStdout(meta.RunInfo, result)
	}
	if err := storage.ExportJSON(outPath, meta.RunInfo, result); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

// storedFrame loads the run's mesh and one of its snapshots.
func storedFrame(st *storage.Store, runID string, index int) (dynamo.Geometry, error) {
	g, err := st.LoadMesh(runID)
	if err != nil {
		return g, fmt.Errorf("run %s has no stored mesh: %w", runID, err)
	}
	snaps, _, err := st.LoadPositions(runID)
	if err != nil {
		return g, err
	}
	if len(snaps) == 0 {
		return g, fmt.Errorf("run %s recorded no positions", runID)
	}
	if index < 0 {
		index += len(snaps)
	}
	if index < 0 || index >= len(snaps) {
		return g, fmt.Errorf("frame out of range, run has %d", len(snaps))
	}
	if len(snaps[index]) != len(g.Vertices) {
		return g, fmt.Errorf("frame has %d nodes, mesh has %d", len(snaps[index]), len(g.Vertices))
	}
	g.Vertices = snaps[index]
	return g, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runID := args[0]

	var svg string
	if node >= 0 {
		snaps, times, err := st.LoadPositions(runID)
		if err != nil {
			return err
		}
		height := func(t float64, p mgl64.Vec3) mgl64.Vec2 { return mgl64.Vec2{t, p.Y()} }
		points := export.Trajectory(snaps, times, node, height)
		if len(points) < 2 {
			return fmt.Errorf("node %d has fewer than two samples", node)
		}
		svg = export.TrajectoryToSVG(points, svgWidth, svgHeight, string(viz.CurrentTheme.Accent))
	} else {
		g, err := storedFrame(st, runID, frame)
		if err != nil {
			return err
		}
		cam := viz.NewCamera()
		cam.Frame(bounds(g.Vertices))
		svg = export.ClothToSVG(g.Vertices, g.Triangles, cam, svgWidth, svgHeight)
	}

	return writeOut(svg)
}

func exportOBJ(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	g, err := storedFrame(st, args[0], frame)
	if err != nil {
		return err
	}
	if outPath == "" {
		return mesh.WriteOBJ(os.Stdout, g)
	}
	file, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := mesh.WriteOBJ(file, g); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func bounds(ps []mgl64.Vec3) (lo, hi mgl64.Vec3) {
	lo, hi = ps[0], ps[0]
	for _, p := range ps[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

func writeOut(s string) error {
	if outPath == "" {
		_, err := fmt.Println(s)
		return err
	}
	if err := os.WriteFile(outPath, []byte(s), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}
