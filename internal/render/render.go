package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// Output formats.
const (
	FormatBash     = "bash"
	FormatSolidity = "solidity"
	FormatCalldata = "calldata"
)

// Formats lists every supported output format.
var Formats = []string{FormatBash, FormatSolidity, FormatCalldata}

// Renderer turns selected markets into a deployment artifact.
// Titles and durations are embedded as-is; they were made safe upstream.
type Renderer interface {
	Format() string
	ContentType() string
	Render(w io.Writer, markets []types.ValidatedMarket) error
	// RenderFailure writes an artifact that marks a failed pipeline run.
	RenderFailure(w io.Writer, err error) error
}

// DeployConfig holds the deployment constants injected into renderers.
// Secrets are never embedded; artifacts reference them by variable name.
type DeployConfig struct {
	Factory       common.Address
	EnvFile       string
	RPCURLVar     string
	PrivateKeyVar string
	GasLimit      uint64
	CallDelay     time.Duration
	ContractName  string
}

// Validate checks that the config can produce a runnable artifact.
func (c *DeployConfig) Validate() error {
	if c.Factory == (common.Address{}) {
		return fmt.Errorf("factory address cannot be zero")
	}
	if !isIdentifier(c.RPCURLVar) {
		return fmt.Errorf("invalid RPC URL variable name %q", c.RPCURLVar)
	}
	if !isIdentifier(c.PrivateKeyVar) {
		return fmt.Errorf("invalid private key variable name %q", c.PrivateKeyVar)
	}
	if c.ContractName != "" && !isIdentifier(c.ContractName) {
		return fmt.Errorf("invalid contract name %q", c.ContractName)
	}
	if c.CallDelay < 0 {
		return fmt.Errorf("call delay cannot be negative")
	}
	return nil
}

// ParseFactoryAddress parses a hex contract address.
func ParseFactoryAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid factory address %q", s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("factory address cannot be zero")
	}
	return addr, nil
}

// New returns the renderer for format.
func New(format string, cfg *DeployConfig) (Renderer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("deploy config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate deploy config: %w", err)
	}

	switch format {
	case FormatBash:
		return NewShellRenderer(cfg), nil
	case FormatSolidity:
		return NewSolidityRenderer(cfg), nil
	case FormatCalldata:
		return NewCalldataRenderer(cfg)
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// oneLine flattens an error message so it fits in a single comment line.
func oneLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
