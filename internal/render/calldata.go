package render

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

const marketFactoryABI = `[{"inputs":[{"internalType":"string","name":"question","type":"string"},{"internalType":"uint256","name":"duration","type":"uint256"}],"name":"createMarket","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"nonpayable","type":"function"}]`

// CalldataRenderer emits ABI-encoded createMarket transactions as JSON, for
// operators that submit through their own signer.
type CalldataRenderer struct {
	cfg *DeployConfig
	abi abi.ABI
}

// Call is one unsigned createMarket transaction.
type Call struct {
	To       string `json:"to"`
	Title    string `json:"title"`
	Duration int64  `json:"duration"`
	Data     string `json:"data"`
}

// NewCalldataRenderer creates a calldata renderer.
func NewCalldataRenderer(cfg *DeployConfig) (*CalldataRenderer, error) {
	parsed, err := abi.JSON(strings.NewReader(marketFactoryABI))
	if err != nil {
		return nil, fmt.Errorf("parse factory ABI: %w", err)
	}

	return &CalldataRenderer{cfg: cfg, abi: parsed}, nil
}

// Format returns "calldata".
func (r *CalldataRenderer) Format() string { return FormatCalldata }

// ContentType returns the MIME type of the artifact.
func (r *CalldataRenderer) ContentType() string { return "application/json" }

// Selector returns the 4-byte createMarket selector as hex.
func (r *CalldataRenderer) Selector() string {
	return hexutil.Encode(r.abi.Methods["createMarket"].ID)
}

// Encode packs a single createMarket call.
func (r *CalldataRenderer) Encode(m types.ValidatedMarket) ([]byte, error) {
	data, err := r.abi.Pack("createMarket", m.Title, big.NewInt(m.Duration))
	if err != nil {
		return nil, fmt.Errorf("pack createMarket: %w", err)
	}
	return data, nil
}

// Render writes a JSON array of calls, in selection order.
func (r *CalldataRenderer) Render(w io.Writer, markets []types.ValidatedMarket) error {
	calls := make([]Call, 0, len(markets))
	for _, m := range markets {
		data, err := r.Encode(m)
		if err != nil {
			return err
		}
		calls = append(calls, Call{
			To:       r.cfg.Factory.Hex(),
			Title:    m.Title,
			Duration: m.Duration,
			Data:     hexutil.Encode(data),
		})
	}

	out, err := json.MarshalIndent(calls, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calls: %w", err)
	}

	return writeString(w, string(out)+"\n")
}

// RenderFailure writes {"error": "..."}.
func (r *CalldataRenderer) RenderFailure(w io.Writer, err error) error {
	out, marshalErr := json.Marshal(map[string]string{"error": oneLine(err)})
	if marshalErr != nil {
		return fmt.Errorf("marshal error: %w", marshalErr)
	}
	return writeString(w, string(out)+"\n")
}
