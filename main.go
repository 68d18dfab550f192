package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kwv/planmesh/plan"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile   = flag.String("config", "", "Path to configuration file (default: built-in defaults)")
	planFile     = flag.String("plan", "", "Path to plan GeoJSON file")
	validateOnly = flag.Bool("validate", false, "Validate plan geometry and exit")
	statsOnly    = flag.Bool("stats", false, "Print plan statistics and exit")
	renderOnly   = flag.Bool("render", false, "Render the plan and exit")
	outputFile   = flag.String("output", "plan.svg", "Output file for --render and --export modes")
	renderFormat = flag.String("format", "svg", "Render output format: svg or png")
	simplifyTol  = flag.Float64("simplify-tol", 0, "Decimate plan geometry at this tolerance (meters) before output")
	exportOnly   = flag.Bool("export", false, "Export the plan as GeoJSON with computed properties and exit")
)

func main() {
	flag.Parse()
	fmt.Printf("planmesh version: %s\n", Version)

	config := plan.DefaultConfig()
	if *configFile != "" {
		loaded, err := plan.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config = loaded
	}

	if *planFile == "" {
		fmt.Println("No plan file given. Use --plan to load a GeoJSON plan.")
		flag.Usage()
		os.Exit(2)
	}

	processor := loadPlan(config, *planFile)

	if *simplifyTol > 0 {
		removed := processor.OptimizeElements(*simplifyTol)
		log.Printf("Decimation removed %d vertices at tolerance %.3fm", removed, *simplifyTol)
	}

	switch {
	case *validateOnly:
		runValidate(processor)
	case *statsOnly:
		runStats(processor)
	case *renderOnly:
		runRender(processor, config)
	case *exportOnly:
		runExport(processor)
	default:
		runStats(processor)
	}
}

// loadPlan reads the plan file and adds its elements to a processor.
func loadPlan(config *plan.Config, path string) *plan.Processor {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read plan file: %v", err)
	}

	processor := plan.NewProcessor(config)
	ids, err := processor.LoadGeoJSON(data)
	if err != nil {
		log.Fatalf("Failed to parse plan: %v", err)
	}

	fmt.Printf("Loaded %d elements from %s\n", len(ids), path)
	return processor
}

func runValidate(processor *plan.Processor) {
	failed := 0
	for _, el := range processor.Elements() {
		result, err := processor.Validate(el.ID)
		if err != nil {
			log.Fatalf("Validation failed for %s: %v", el.ID, err)
		}

		status := "OK"
		if !result.IsValid {
			status = "INVALID"
			failed++
		}
		fmt.Printf("%-24s %-8s %s\n", el.ID, el.Kind, status)

		for _, e := range result.Errors {
			fmt.Printf("    error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
		for _, rec := range result.Recommendations {
			fmt.Printf("    hint: %s\n", rec)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d element(s) failed validation\n", failed)
		os.Exit(1)
	}
	fmt.Println("\nAll elements valid")
}

func runStats(processor *plan.Processor) {
	var totalArea, totalVolume float64
	counts := make(map[plan.ElementKind]int)

	for _, el := range processor.Elements() {
		props, err := processor.Properties(el.ID)
		if err != nil {
			continue
		}
		counts[el.Kind]++
		totalArea += props.Area
		totalVolume += props.Volume

		fmt.Printf("%-24s %-8s area=%8.2fm2 perimeter=%7.2fm centroid=(%.2f, %.2f)\n",
			el.ID, el.Kind, props.Area, props.Perimeter, props.Centroid.X, props.Centroid.Y)
	}

	if rels := processor.AllAdjacencies(); len(rels) > 0 {
		fmt.Println()
		for _, rel := range rels {
			fmt.Printf("%s <-> %s: %s (confidence %.2f, shared %.2fm)\n",
				rel.Element1ID, rel.Element2ID, rel.Kind, rel.Confidence, rel.SharedBoundary)
		}
	}

	building := processor.Statistics()
	fmt.Println()
	fmt.Printf("Elements: %d (", processor.Stats().Elements)
	var parts []string
	for _, kind := range []plan.ElementKind{plan.KindRoom, plan.KindArea, plan.KindOpening, plan.KindShaft} {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
		}
	}
	fmt.Printf("%s)\n", strings.Join(parts, ", "))
	fmt.Printf("Total area:        %.2f m2\n", totalArea)
	fmt.Printf("Total volume:      %.2f m3\n", totalVolume)
	fmt.Printf("Average room area: %.2f m2\n", building.AverageRoomArea)
	fmt.Printf("Mean complexity:   %.2f\n", building.MeanComplexity)
	fmt.Printf("Building bounds:   (%.2f, %.2f) - (%.2f, %.2f)\n",
		building.Bounds.MinX, building.Bounds.MinY,
		building.Bounds.MaxX, building.Bounds.MaxY)
}

func runRender(processor *plan.Processor, config *plan.Config) {
	renderer := plan.NewPlanRenderer(processor.Elements(), &config.Render)
	renderer.Adjacencies = processor.AllAdjacencies()

	invalid := make(map[string]bool)
	for _, el := range processor.Elements() {
		if result, err := processor.Validate(el.ID); err == nil && !result.IsValid {
			invalid[el.ID] = true
		}
	}
	renderer.Invalid = invalid

	out, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()

	switch *renderFormat {
	case "svg":
		err = renderer.RenderToSVG(out)
	case "png":
		err = renderer.RenderToPNG(out)
	default:
		log.Fatalf("Unknown render format: %s (use svg or png)", *renderFormat)
	}
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	fmt.Printf("Rendered plan to %s\n", *outputFile)
}

func runExport(processor *plan.Processor) {
	data, err := processor.ExportGeoJSON()
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}

	fmt.Printf("Exported %d elements to %s\n", len(processor.Elements()), *outputFile)
}
