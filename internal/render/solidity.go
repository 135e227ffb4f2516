package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// DefaultContractName names the generated Foundry script contract.
const DefaultContractName = "CreateTrendingMarkets"

// SolidityRenderer emits a Foundry script that creates every market in a
// single broadcast. Each call is wrapped in try/catch so one failure does
// not abort the rest.
type SolidityRenderer struct {
	cfg *DeployConfig
}

// NewSolidityRenderer creates a Solidity script renderer.
func NewSolidityRenderer(cfg *DeployConfig) *SolidityRenderer {
	return &SolidityRenderer{cfg: cfg}
}

// Format returns "solidity".
func (r *SolidityRenderer) Format() string { return FormatSolidity }

// ContentType returns the MIME type of the artifact.
func (r *SolidityRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes the script.
func (r *SolidityRenderer) Render(w io.Writer, markets []types.ValidatedMarket) error {
	name := r.cfg.ContractName
	if name == "" {
		name = DefaultContractName
	}

	var b strings.Builder

	b.WriteString("// SPDX-License-Identifier: MIT\n")
	b.WriteString("pragma solidity ^0.8.20;\n")
	b.WriteString("import \"forge-std/Script.sol\";\n")
	b.WriteString("import \"forge-std/console.sol\";\n")
	b.WriteString("\n")
	b.WriteString("interface IMarketFactory {\n")
	b.WriteString("    function createMarket(string memory question, uint256 duration) external returns (address);\n")
	b.WriteString("}\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "contract %s is Script {\n", name)
	b.WriteString("    function run() external {\n")
	fmt.Fprintf(&b, "        uint256 deployerPrivateKey = vm.envUint(\"%s\");\n", r.cfg.PrivateKeyVar)
	fmt.Fprintf(&b, "        address factoryAddr = %s;\n", r.cfg.Factory.Hex())
	b.WriteString("        IMarketFactory factory = IMarketFactory(factoryAddr);\n")
	b.WriteString("\n")
	b.WriteString("        vm.startBroadcast(deployerPrivateKey);\n")
	b.WriteString("\n")

	for _, m := range markets {
		fmt.Fprintf(&b, "        console.log(\"Creating market: %s\");\n", m.Title)
		fmt.Fprintf(&b, "        try factory.createMarket(\"%s\", %d) {\n", m.Title, m.Duration)
		b.WriteString("            console.log(\"   Success\");\n")
		b.WriteString("        } catch Error(string memory reason) {\n")
		b.WriteString("            console.log(\"   Failed:\", reason);\n")
		b.WriteString("        } catch {\n")
		b.WriteString("            console.log(\"   Failed (unknown)\");\n")
		b.WriteString("        }\n")
		b.WriteString("\n")
	}

	b.WriteString("        vm.stopBroadcast();\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	return writeString(w, b.String())
}

// RenderFailure writes a comment-only file that does not compile as a script.
func (r *SolidityRenderer) RenderFailure(w io.Writer, err error) error {
	return writeString(w, fmt.Sprintf("// Error: %s\n", oneLine(err)))
}
