package registry

// ABISource names one ABI in the selector registry. Sources earlier in a
// list win selector collisions.
type ABISource struct {
	Name string
	JSON string
}

const votingEscrowABIJSON = `[
  {"type":"function","name":"createLock","stateMutability":"nonpayable","inputs":[{"name":"value","type":"uint256"},{"name":"lockDuration","type":"uint256"}],"outputs":[{"type":"uint256"}]},
  {"type":"function","name":"createLockFor","stateMutability":"nonpayable","inputs":[{"name":"value","type":"uint256"},{"name":"lockDuration","type":"uint256"},{"name":"to","type":"address"}],"outputs":[{"type":"uint256"}]},
  {"type":"function","name":"increaseAmount","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"value","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"increaseUnlockTime","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"lockDuration","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"merge","stateMutability":"nonpayable","inputs":[{"name":"from","type":"uint256"},{"name":"to","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

const voterABIJSON = `[
  {"type":"function","name":"vote","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"poolVote","type":"address[]"},{"name":"weights","type":"uint256[]"}],"outputs":[]},
  {"type":"function","name":"reset","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"poke","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claimFees","stateMutability":"nonpayable","inputs":[{"name":"fees","type":"address[]"},{"name":"tokens","type":"address[][]"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claimBribes","stateMutability":"nonpayable","inputs":[{"name":"bribes","type":"address[]"},{"name":"tokens","type":"address[][]"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claimRewards","stateMutability":"nonpayable","inputs":[{"name":"gauges","type":"address[]"}],"outputs":[]},
  {"type":"function","name":"depositManaged","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"},{"name":"mTokenId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawManaged","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]}
]`

const routerABIJSON = `[
  {"type":"function","name":"swapExactTokensForTokens","stateMutability":"nonpayable","inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"routes","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"stable","type":"bool"},{"name":"factory","type":"address"}]},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
  {"type":"function","name":"swapExactETHForTokens","stateMutability":"payable","inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"routes","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"stable","type":"bool"},{"name":"factory","type":"address"}]},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
  {"type":"function","name":"swapExactTokensForETH","stateMutability":"nonpayable","inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"routes","type":"tuple[]","components":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"stable","type":"bool"},{"name":"factory","type":"address"}]},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"name":"amounts","type":"uint256[]"}]},
  {"type":"function","name":"addLiquidity","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"},{"name":"amountADesired","type":"uint256"},{"name":"amountBDesired","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"type":"uint256"},{"type":"uint256"},{"type":"uint256"}]},
  {"type":"function","name":"addLiquidityETH","stateMutability":"payable","inputs":[{"name":"token","type":"address"},{"name":"stable","type":"bool"},{"name":"amountTokenDesired","type":"uint256"},{"name":"amountTokenMin","type":"uint256"},{"name":"amountETHMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"type":"uint256"},{"type":"uint256"},{"type":"uint256"}]},
  {"type":"function","name":"removeLiquidity","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"},{"name":"liquidity","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"type":"uint256"},{"type":"uint256"}]},
  {"type":"function","name":"removeLiquidityETH","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"stable","type":"bool"},{"name":"liquidity","type":"uint256"},{"name":"amountTokenMin","type":"uint256"},{"name":"amountETHMin","type":"uint256"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"outputs":[{"type":"uint256"},{"type":"uint256"}]}
]`

const swapperABIJSON = `[
  {"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"},{"name":"deadline","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"execute","stateMutability":"payable","inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"}],"outputs":[]}
]`

const positionManagerABIJSON = `[
  {"type":"function","name":"mint","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"token0","type":"address"},{"name":"token1","type":"address"},{"name":"tickSpacing","type":"int24"},{"name":"tickLower","type":"int24"},{"name":"tickUpper","type":"int24"},{"name":"amount0Desired","type":"uint256"},{"name":"amount1Desired","type":"uint256"},{"name":"amount0Min","type":"uint256"},{"name":"amount1Min","type":"uint256"},{"name":"recipient","type":"address"},{"name":"deadline","type":"uint256"},{"name":"sqrtPriceX96","type":"uint160"}]}],"outputs":[]},
  {"type":"function","name":"increaseLiquidity","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"tokenId","type":"uint256"},{"name":"amount0Desired","type":"uint256"},{"name":"amount1Desired","type":"uint256"},{"name":"amount0Min","type":"uint256"},{"name":"amount1Min","type":"uint256"},{"name":"deadline","type":"uint256"}]}],"outputs":[]},
  {"type":"function","name":"decreaseLiquidity","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"tokenId","type":"uint256"},{"name":"liquidity","type":"uint128"},{"name":"amount0Min","type":"uint256"},{"name":"amount1Min","type":"uint256"},{"name":"deadline","type":"uint256"}]}],"outputs":[]},
  {"type":"function","name":"collect","stateMutability":"payable","inputs":[{"name":"params","type":"tuple","components":[{"name":"tokenId","type":"uint256"},{"name":"recipient","type":"address"},{"name":"amount0Max","type":"uint128"},{"name":"amount1Max","type":"uint128"}]}],"outputs":[]},
  {"type":"function","name":"multicall","stateMutability":"payable","inputs":[{"name":"data","type":"bytes[]"}],"outputs":[{"name":"results","type":"bytes[]"}]}
]`

const gaugeABIJSON = `[
  {"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"},{"name":"recipient","type":"address"}],"outputs":[]},
  {"type":"function","name":"depositAMM","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getReward","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"getRewards","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"},{"name":"tokens","type":"address[]"}],"outputs":[]}
]`

const factoryABIJSON = `[
  {"type":"function","name":"createPool","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],"outputs":[{"name":"pool","type":"address"}]},
  {"type":"function","name":"createPool","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"tickSpacing","type":"int24"},{"name":"sqrtPriceX96","type":"uint160"}],"outputs":[{"name":"pool","type":"address"}]}
]`

const erc20ABIJSON = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"type":"bool"}]},
  {"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"type":"bool"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"type":"bool"}]}
]`

// DefaultABISources lists the decoded-function ABI set in collision priority order.
// The voting escrow shares transferFrom(address,address,uint256) with ERC-20 and
// withdraw(uint256) with gauges; it is listed first so lock transfers and lock
// withdrawals decode against its argument names.
func DefaultABISources() []ABISource {
	return []ABISource{
		{Name: "votingEscrow", JSON: votingEscrowABIJSON},
		{Name: "voter", JSON: voterABIJSON},
		{Name: "router", JSON: routerABIJSON},
		{Name: "swapper", JSON: swapperABIJSON},
		{Name: "positionManager", JSON: positionManagerABIJSON},
		{Name: "gauge", JSON: gaugeABIJSON},
		{Name: "factory", JSON: factoryABIJSON},
		{Name: "erc20", JSON: erc20ABIJSON},
	}
}
