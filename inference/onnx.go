package inference

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"

	"onitama/game"
)

type OnnxConfig struct {
	ModelPath string
	// SharedLibraryPath overrides ORT_SHARED_LIBRARY_PATH.
	SharedLibraryPath string
	// Logits is set when the policy head is not already softmaxed.
	Logits         bool
	IntraOpThreads int
}

// OnnxClient runs a policy/value network with ONNX Runtime. The session is
// shared, so Evaluate holds a mutex around each forward pass.
type OnnxClient struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	logits  bool
	input   []float32
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func NewOnnxClient(cfg OnnxConfig) (*OnnxClient, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("onnx model: %w", err)
	}

	libPath := cfg.SharedLibraryPath
	if libPath == "" {
		libPath = os.Getenv("ORT_SHARED_LIBRARY_PATH")
	}
	ortInitOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("init onnx runtime: %w", ortInitErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer options.Destroy()

	threads := cfg.IntraOpThreads
	if threads <= 0 {
		threads = 1
	}
	if err := options.SetIntraOpNumThreads(threads); err != nil {
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}
	if err := options.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("set inter-op threads: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input"}, []string{"policy", "value"}, options)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	log.Info().Str("model", cfg.ModelPath).Int("threads", threads).Msg("onnx session ready")

	return &OnnxClient{
		session: session,
		logits:  cfg.Logits,
		input:   make([]float32, InputSize),
	}, nil
}

func (c *OnnxClient) Close() error {
	return c.session.Destroy()
}

func (c *OnnxClient) Evaluate(state game.State, color game.Color) (Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	EncodeInto(c.input, state, color)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, Channels, game.BoardWidth, game.BoardWidth), c.input)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: input tensor: %v", ErrEvaluation, err)
	}
	defer inputTensor.Destroy()

	policyTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, PolicySize))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: policy tensor: %v", ErrEvaluation, err)
	}
	defer policyTensor.Destroy()

	valueTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: value tensor: %v", ErrEvaluation, err)
	}
	defer valueTensor.Destroy()

	if err := c.session.Run([]ort.Value{inputTensor}, []ort.Value{policyTensor, valueTensor}); err != nil {
		return Prediction{}, fmt.Errorf("%w: run: %v", ErrEvaluation, err)
	}

	raw := make([]float32, PolicySize)
	copy(raw, policyTensor.GetData())
	if c.logits {
		Softmax(raw)
	}
	return Prediction{
		Value:  float64(valueTensor.GetData()[0]),
		Policy: DecodePolicy(raw, color),
	}, nil
}
