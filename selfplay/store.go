package selfplay

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"onitama/game"
)

// Sample is one self-play training example.
//
// State is the encoded position (inference.Encode) seen by the mover.
// Policy is the root visit distribution laid out like the network's policy
// head, in the mover's view. Value is the game outcome for the mover: 1 for
// a win, -1 for a loss, 0 for a game stopped at the ply limit.
type Sample struct {
	GameID string    `parquet:"game_id,dict"`
	Ply    int32     `parquet:"ply"`
	Color  string    `parquet:"color,dict"`
	Cards  []int32   `parquet:"cards"` // Deck slots red0, red1, blue0, blue1, neutral
	State  []float32 `parquet:"state"`
	Policy []float32 `parquet:"policy"`
	Move   string    `parquet:"move,dict"`
	Value  float32   `parquet:"value"`
}

// Deck rebuilds the deck the sample was taken from.
func (s Sample) Deck() (game.Deck, error) {
	if len(s.Cards) != game.DeckSize {
		return game.Deck{}, fmt.Errorf("sample has %d cards, want %d", len(s.Cards), game.DeckSize)
	}
	var cards [game.DeckSize]game.Card
	for i, id := range s.Cards {
		c, err := game.CardByID(int(id))
		if err != nil {
			return game.Deck{}, err
		}
		cards[i] = c
	}
	return game.NewDeck(cards)
}

// WriteSamples writes batch number seq into outDir through a temp file and an
// atomic rename. It refuses to replace an existing batch. The returned path
// is the final parquet file path.
func WriteSamples(outDir string, seq int, rows []Sample) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d_%06d.parquet", time.Now().UnixNano(), seq)
	finalPath := filepath.Join(outDir, name)
	if _, err := os.Stat(finalPath); err == nil {
		return "", fmt.Errorf("batch %s already exists", finalPath)
	}
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "selfplay_sample_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

func ReadSamples(path string) ([]Sample, error) {
	rows, err := parquet.ReadFile[Sample](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
