package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the treasury MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolParseCommand = mcp.NewTool("parse_command",
	mcp.WithDescription(
		"Parse a natural-language wallet command into a structured intent "+
			"without executing anything. Returns the intent type, amount, token "+
			"pair, protocol hint, confidence, and any validation errors. "+
			"Use this to preview what a command would do."),
	mcp.WithString("command",
		mcp.Required(),
		mcp.Description("The command text, e.g. 'swap 0.1 SOL to USDC'")),
)

var ToolCheckBalance = mcp.NewTool("check_balance",
	mcp.WithDescription(
		"Check the treasury wallet's current SOL balance. "+
			"Returns the wallet address and balance in SOL and lamports."),
)

var ToolGetQuote = mcp.NewTool("get_quote",
	mcp.WithDescription(
		"Get a swap quote from Jupiter without executing the swap. "+
			"Returns the expected output amount, price impact, and route."),
	mcp.WithString("from",
		mcp.Required(),
		mcp.Description("Source token symbol: SOL, USDC, or USDT")),
	mcp.WithString("to",
		mcp.Required(),
		mcp.Description("Destination token symbol: SOL, USDC, or USDT")),
	mcp.WithString("amount",
		mcp.Required(),
		mcp.Description("Amount of the source token, e.g. '0.1'")),
)

var ToolGetPosition = mcp.NewTool("get_position",
	mcp.WithDescription(
		"Get the wallet's Kamino lending position for a token, "+
			"including the current APY."),
	mcp.WithString("token",
		mcp.Description("Token symbol, default USDC")),
)

var ToolExecuteCommand = mcp.NewTool("execute_command",
	mcp.WithDescription(
		"Run a natural-language wallet command through the full pipeline: "+
			"parse, risk assessment, then execution. Commands that fail the "+
			"risk assessment are refused with the rejection reasons. "+
			"This can move funds; use parse_command first to preview."),
	mcp.WithString("command",
		mcp.Required(),
		mcp.Description("The command text, e.g. 'deposit 100 USDC into kamino'")),
)
