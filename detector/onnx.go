package detector

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"sync"

	"github.com/formfitness/go-formfit/internal/log"
	"github.com/formfitness/go-formfit/postprocess"
	"github.com/formfitness/go-formfit/preprocess"
	"github.com/formfitness/go-formfit/skeleton"
	"gocv.io/x/gocv"
)

// letterbox padding, the gray YOLOv8 was trained with
var padColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Config holds the ONNX pose detector configuration
type Config struct {
	// ModelPath is the YOLOv8 pose ONNX file
	ModelPath string `yaml:"model"`
	// InputWidth and InputHeight are the model input dimensions
	InputWidth  int `yaml:"input_width"`
	InputHeight int `yaml:"input_height"`
	// Backend and Target select the OpenCV DNN execution, eg: "default",
	// "openvino", "cuda" and "cpu", "opencl", "cuda"
	Backend string `yaml:"backend"`
	Target  string `yaml:"target"`
	// Pose are the post processing parameters
	Pose postprocess.YOLOv8PoseParams `yaml:"pose"`
	// PoolSize is the number of detectors opened by NewPool
	PoolSize int `yaml:"pool_size"`
}

// DefaultConfig returns defaults for yolov8n-pose at 640x640
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/yolov8n-pose.onnx",
		InputWidth:  640,
		InputHeight: 640,
		Backend:     "default",
		Target:      "cpu",
		Pose:        postprocess.YOLOv8PoseCOCOParams(),
		PoolSize:    2,
	}
}

// ONNX detects poses with a YOLOv8 pose model run by OpenCV DNN.  It is safe
// for concurrent use, calls are serialized.
type ONNX struct {
	mu      sync.Mutex
	net     gocv.Net
	cfg     Config
	decoder *postprocess.YOLOv8Pose
	resizer *preprocess.Resizer
	closed  bool
	logger  *slog.Logger
}

// NewONNX loads the model in cfg.ModelPath
func NewONNX(cfg Config, logger *slog.Logger) (*ONNX, error) {

	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("pose model: %w", err)
	}

	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, fmt.Errorf("invalid model input size %dx%d", cfg.InputWidth, cfg.InputHeight)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)

	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.ParseNetBackend(cfg.Backend))
	net.SetPreferableTarget(gocv.ParseNetTarget(cfg.Target))

	logger = log.Or(logger).With("component", "detector", "model", cfg.ModelPath)
	logger.Info("pose model loaded", "input", fmt.Sprintf("%dx%d", cfg.InputWidth, cfg.InputHeight))

	return &ONNX{
		net:     net,
		cfg:     cfg,
		decoder: postprocess.NewYOLOv8Pose(cfg.Pose),
		logger:  logger,
	}, nil
}

// Detect runs the model over img and returns the skeleton of the most
// confident person
func (d *ONNX) Detect(img gocv.Mat, o Orientation) (skeleton.Skeleton, error) {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return skeleton.Skeleton{}, ErrClosed
	}

	if img.Empty() {
		return skeleton.Skeleton{}, ErrEmptyImage
	}

	upright := img
	rotated := gocv.NewMat()
	defer rotated.Close()

	if o.Upright(img, &rotated) {
		upright = rotated
	}

	w, h := upright.Cols(), upright.Rows()

	// frames from one source share a size, keep the resizer until it changes
	if d.resizer == nil || !d.resizer.Matches(w, h) {
		if d.resizer != nil {
			d.resizer.Close()
		}
		d.resizer = preprocess.NewResizer(w, h, d.cfg.InputWidth, d.cfg.InputHeight)
	}

	input := gocv.NewMat()
	defer input.Close()

	d.resizer.LetterBoxResize(upright, &input, padColor)

	blob := gocv.BlobFromImage(input, 1.0/255.0,
		image.Pt(d.cfg.InputWidth, d.cfg.InputHeight), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	channels, anchors, transposed, err := outputShape(output.Size())

	if err != nil {
		return skeleton.Skeleton{}, err
	}

	data, err := output.DataPtrFloat32()

	if err != nil {
		return skeleton.Skeleton{}, fmt.Errorf("read model output: %w", err)
	}

	if transposed {
		data = transpose(data, anchors, channels)
	}

	results, err := d.decoder.Decode(data, channels, anchors)

	if err != nil {
		return skeleton.Skeleton{}, err
	}

	postprocess.Restore(results, d.resizer)

	best, ok := postprocess.Best(results)

	if !ok {
		return skeleton.Skeleton{}, ErrNoPose
	}

	d.logger.Debug("pose detected", "people", len(results), "score", best.Score)

	return postprocess.ToSkeleton(best.KeyPoints, float64(w), float64(h)), nil
}

// Close releases the model
func (d *ONNX) Close() error {

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	d.closed = true

	if d.resizer != nil {
		d.resizer.Close()
	}

	return d.net.Close()
}

// outputShape reads the channel and anchor counts from the model output
// dimensions.  Exports shaped [1, anchors, channels] are reported as
// transposed.
func outputShape(dims []int) (channels, anchors int, transposed bool, err error) {

	if len(dims) != 3 || dims[0] != 1 {
		return 0, 0, false, fmt.Errorf("%w: dims %v", postprocess.ErrOutputShape, dims)
	}

	if dims[1] > dims[2] {
		return dims[2], dims[1], true, nil
	}

	return dims[1], dims[2], false, nil
}

// transpose converts a row major rows x cols matrix to cols x rows
func transpose(data []float32, rows, cols int) []float32 {
	out := make([]float32, len(data))

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out[c*rows+r] = data[r*cols+c]
		}
	}

	return out
}
