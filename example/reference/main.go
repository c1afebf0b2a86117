/*
Example program that detects the pose in an exercise reference image and
saves the image annotated with the reference skeleton, or every reference
image in the directory when no name is given.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/formfitness/go-formfit/config"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/preprocess"
	"github.com/formfitness/go-formfit/reference"
	"github.com/formfitness/go-formfit/render"
	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
)

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "YAML configuration file, defaults are used when not set")
	refDir := flag.String("d", "", "Directory of reference images, overrides the config file")
	name := flag.String("i", "", "Reference image name without extension, all images when not set")
	outDir := flag.String("o", "out", "Directory to save annotated images to")
	dump := flag.Bool("dump", false, "Print the effective configuration as YAML and exit")

	flag.Parse()

	cfg := config.Default()

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.L().Error("loading config", "file", *cfgFile, "error", err)
			os.Exit(1)
		}
	}

	if *refDir != "" {
		cfg.References.Dir = *refDir
	}

	if *dump {
		data, err := cfg.Marshal()

		if err != nil {
			log.L().Error("encoding config", "error", err)
			os.Exit(1)
		}

		fmt.Print(string(data))
		return
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	logger := log.L()

	pool, err := detector.OpenPool(cfg.Detector, logger)

	if err != nil {
		logger.Error("creating detector pool", "error", err)
		os.Exit(1)
	}

	defer pool.Close()

	provider := reference.NewDirProvider(cfg.References.Dir)
	repo := reference.NewRepository(provider, pool, logger)

	names := []string{*name}

	if *name == "" {
		names, err = provider.Names()

		if err != nil {
			logger.Error("listing references", "dir", cfg.References.Dir, "error", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("creating output directory", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := repo.Preload(ctx, cfg.References.PreloadLimit, names...); err != nil {
		logger.Warn("some references failed", "error", err)
	}

	for _, n := range names {
		pose, ok := repo.Get(n)

		if !ok {
			continue
		}

		out := filepath.Join(*outDir, n+".jpg")

		if err := annotate(pose, out); err != nil {
			logger.Error("annotating reference", "name", n, "error", err)
			continue
		}

		logger.Info("saved reference", "name", n, "joints", pose.Skeleton.Usable(),
			"valid", skeleton.Valid(pose.Skeleton), "file", out)
	}
}

// annotate draws the reference skeleton over its own image and saves it
func annotate(pose *reference.ReferencePose, file string) error {

	buf, err := preprocess.NewPixelBuffer(pose.Image)

	if err != nil {
		return err
	}

	img, err := buf.ToMat()

	if err != nil {
		return err
	}

	defer img.Close()

	render.Skeleton(&img, pose.Skeleton, render.ViewPlacement(pose.Size),
		render.ReferenceStyle(), nil)

	if ok := gocv.IMWrite(file, img); !ok {
		return fmt.Errorf("could not write %s", file)
	}

	return nil
}
