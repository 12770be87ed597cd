package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/setanarut/camouflage"
	"github.com/setanarut/camouflage/config"
	"github.com/setanarut/camouflage/utils"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	bgPath := flag.String("bg", "", "Background image")
	fgPath := flag.String("fg", "", "Foreground image (transparent pixels are ignored)")
	posX := flag.Int("x", 0, "Foreground x position on the background")
	posY := flag.Int("y", 0, "Foreground y position on the background")
	configPath := flag.String("config", "camouflage.yaml", "YAML configuration file, defaults are used when it does not exist")
	levels := flag.Int("levels", 8, "Tone levels kept per image (0 disables quantization)")
	method := flag.String("method", "uniform", "Quantizer: uniform, kmeans, dominantcolor")
	k := flag.Int("k", camouflage.DefaultK, "Background neighbours per foreground region")
	crop := flag.String("crop", "overlaps", "Background crop predicate: overlaps, connected, touching")
	search := flag.String("search", "exhaustive", "Neighbour search: exhaustive, kdtree")
	workers := flag.Int("workers", 1, "Goroutines used to build the graph")
	fgWidth := flag.Int("fg-width", 0, "Rescale the foreground to this width before analysis")
	mask := flag.Bool("mask", false, "Mask the background to the foreground footprint before segmenting")
	labels := flag.String("labels", "", "Write a label image of the kept regions to this PNG file")
	dotPath := flag.String("dot", "", "Write the graph in Graphviz DOT format to this file")
	verbose := flag.Bool("verbose", false, "Print progress")
	flag.Parse()

	if *bgPath == "" || *fgPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Explicit flags override the configuration file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "levels":
			cfg.Quantize.Levels = *levels
		case "method":
			cfg.Quantize.Method = *method
		case "k":
			cfg.Graph.K = *k
		case "crop":
			cfg.Crop.Predicate = *crop
		case "search":
			cfg.Graph.Search = *search
		case "workers":
			cfg.Graph.NumCores = *workers
		case "fg-width":
			cfg.Output.ForegroundWidth = *fgWidth
		case "mask":
			cfg.Crop.MaskFootprint = *mask
		case "labels":
			cfg.Output.Labels = *labels
		case "dot":
			cfg.Output.DOT = *dotPath
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	opt, err := cfg.Options()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	bg, err := utils.LoadGrayAlpha(*bgPath)
	if err != nil {
		log.Fatalf("Failed to read background: %v", err)
	}
	fgImg := utils.ReadImage(*fgPath)
	fgImg = utils.ScaleToWidth(fgImg, cfg.Output.ForegroundWidth)
	fg, err := camouflage.FromImage(fgImg)
	if err != nil {
		log.Fatalf("Failed to convert foreground: %v", err)
	}

	fmt.Printf("background %dx%d, foreground %dx%d at (%d, %d)\n", bg.W, bg.H, fg.W, fg.H, *posX, *posY)

	start := time.Now()
	a := camouflage.NewAnalyzer(bg, fg, image.Pt(*posX, *posY))
	if err := a.Build(opt); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("foreground: %v\n", camouflage.Summarize(a.ForegroundSegments))
	fmt.Printf("background: %v\n", camouflage.Summarize(a.BackgroundSegments))
	fmt.Printf("graph: %d nodes, %d edges, %d foreground clusters\n",
		a.Graph.Len(), a.Graph.EdgeCount(), len(a.Graph.Clusters()))
	fmt.Printf("done in %.2f seconds\n", time.Since(start).Seconds())

	if cfg.Output.Labels != "" {
		segs := append(a.Graph.Background(), a.Graph.Foreground()...)
		if err := utils.SaveImage(utils.LabelImage(bg.W, bg.H, segs), cfg.Output.Labels); err != nil {
			log.Printf("Warning: failed to save label image: %v", err)
		}
	}
	if cfg.Output.DOT != "" {
		if err := utils.SaveGraphDOT(a.Graph, "camouflage", cfg.Output.DOT); err != nil {
			log.Printf("Warning: failed to save graph: %v", err)
		}
	}
}
