// Package evm implements the quest adapter for the Base (EVM)
// deployment of the Pulse contract, using typed contract calls over a
// JSON-RPC endpoint.
package evm

// Supported chain ids for the Base deployment.
const (
	BaseMainnetChainID uint64 = 8453
	BaseSepoliaChainID uint64 = 84532
)

// PulseABI is the ABI of the Pulse contract.
const PulseABI = `[
	{
		"constant": true,
		"inputs": [{"name": "user", "type": "address"}],
		"name": "getUserProfile",
		"outputs": [
			{"name": "totalPoints",    "type": "uint256"},
			{"name": "currentStreak",  "type": "uint256"},
			{"name": "longestStreak",  "type": "uint256"},
			{"name": "lastCheckinDay", "type": "uint256"},
			{"name": "questBitmap",    "type": "uint256"},
			{"name": "level",          "type": "uint256"},
			{"name": "totalCheckins",  "type": "uint256"},
			{"name": "exists",         "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "getGlobalStats",
		"outputs": [
			{"name": "totalUsers",    "type": "uint256"},
			{"name": "totalCheckins", "type": "uint256"},
			{"name": "totalPoints",   "type": "uint256"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "user", "type": "address"}],
		"name": "canClaimCombo",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "dailyCheckin",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "relaySignal",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "weatherCode", "type": "uint256"}],
		"name": "updateAtmosphere",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "recipient", "type": "address"}],
		"name": "nudgeFriend",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "message", "type": "string"}],
		"name": "commitMessage",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "level", "type": "uint256"}],
		"name": "predictPulse",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [],
		"name": "claimDailyCombo",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
