/*
Example program that rates a live subject against an exercise reference pose
from a camera or video file, drawing the aligned overlay in a window and
optionally serving frames over HTTP and websockets.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	formfit "github.com/formfitness/go-formfit"
	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/catalog"
	"github.com/formfitness/go-formfit/config"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/reference"
	"github.com/formfitness/go-formfit/render"
	"github.com/formfitness/go-formfit/web"
	"gocv.io/x/gocv"
)

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "YAML configuration file, defaults are used when not set")
	source := flag.String("v", "0", "Video file or camera device number to capture from")
	exercise := flag.String("e", "warrior-1", "Reference image name of the exercise to rate against")
	orient := flag.String("o", "up", "Orientation of the captured frames [up|right|down|left]")
	follow := flag.Bool("f", false, "Start with the overlay following the live subject")
	show := flag.Bool("w", true, "Show the annotated frames in a window")
	webAddr := flag.String("a", "", "Serve the API on this address, overrides the config file")

	flag.Parse()

	cfg := config.Default()

	if *follow {
		cfg = config.FollowConfig()
	}

	if *cfgFile != "" {
		var err error
		cfg, err = config.Load(*cfgFile)

		if err != nil {
			log.L().Error("loading config", "file", *cfgFile, "error", err)
			os.Exit(1)
		}

		if *follow {
			cfg.Alignment.Mode = align.Following
		}
	}

	if *webAddr != "" {
		cfg.Web.Enabled = true
		cfg.Web.Addr = *webAddr
	}

	log.Init(cfg.Log.Level, cfg.Log.Format)
	logger := log.L()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	o, err := detector.ParseOrientation(*orient)

	if err != nil {
		logger.Error("bad orientation", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *source, *exercise, o, *show); err != nil {
		logger.Error("formfit stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, source, exercise string,
	o detector.Orientation, show bool) error {

	logger := log.L()

	// create pool of pose detectors shared by live frames and reference
	// images
	pool, err := detector.OpenPool(cfg.Detector, logger)

	if err != nil {
		return err
	}

	defer pool.Close()

	cat, err := catalog.New(cfg.Exercises)

	if err != nil {
		return err
	}

	if _, err := cat.ByImage(exercise); err != nil {
		return err
	}

	repo := reference.NewRepository(reference.NewDirProvider(cfg.References.Dir), pool, logger)

	if cfg.References.Preload {
		// missing references are logged, the live view still runs
		if err := repo.Preload(ctx, cfg.References.PreloadLimit, cat.ImageNames()...); err != nil {
			logger.Warn("preloading references", "error", err)
		}
	}

	session := formfit.NewSession(cfg, repo, pool, formfit.WithLogger(logger))

	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web.Addr, session, cat, logger)
		session.AddPublisher(srv)

		go func() {
			if err := srv.Start(ctx); err != nil {
				logger.Error("web server", "error", err)
			}
		}()
	}

	if err := session.SelectExercise(ctx, exercise); err != nil {
		// keep running without an overlay so the subject can still be seen
		logger.Warn("exercise has no reference pose", "error", err)
	}

	video, err := gocv.OpenVideoCapture(source)

	if err != nil {
		return err
	}

	defer video.Close()

	var window *gocv.Window

	if show {
		window = gocv.NewWindow("formfit")
		defer window.Close()
	}

	img := gocv.NewMat()
	defer img.Close()

	upright := gocv.NewMat()
	defer upright.Close()

	style := render.DefaultFrameStyle(cfg.Scoring.GradientSegments)
	style.ShowOverall = cfg.Scoring.ShowOverall

	for {
		if ctx.Err() != nil {
			return nil
		}

		if ok := video.Read(&img); !ok || img.Empty() {
			logger.Info("end of video")
			return nil
		}

		f, err := session.ProcessFrame(ctx, img, o)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// no pose this frame, keep drawing the last result
			f = session.Latest()
		}

		if window == nil {
			continue
		}

		out := &img

		if o.Upright(img, &upright) {
			out = &upright
		}

		render.Frame(out, f, style)

		window.IMShow(*out)

		if quit := handleKey(session, window.WaitKey(1)); quit {
			return nil
		}
	}
}

// handleKey applies the keyboard controls and reports whether to quit
func handleKey(session *formfit.Session, key int) bool {

	switch key {
	case 'q', 27:
		return true
	case 'f':
		session.SetAlignmentMode(align.Following)
	case 'l':
		session.SetAlignmentMode(align.Locked)
	case 'r':
		session.ResetInitialPoseOffset()
	case 'm':
		session.ToggleMirror()
	case 'p':
		session.SetPinned(!session.Overlay().Pinned)
	case '+', '=':
		session.SetScale(session.CurrentScale() * 1.1)
	case '-':
		session.SetScale(session.CurrentScale() / 1.1)
	case '0':
		session.ResetOverlay()
	}

	return false
}
