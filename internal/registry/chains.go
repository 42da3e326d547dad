package registry

const multicall3Address = "0xcA11bde05977b3631167028862bE2a173976CA11"

const opStackWETH = "0x4200000000000000000000000000000000000006"

// BaseDefinition describes Aerodrome on Base.
func BaseDefinition() ChainDefinition {
	return ChainDefinition{
		ChainID:            8453,
		Name:               "base",
		Network:            "base-mainnet",
		TransferCategories: []string{"external", "internal", "erc20", "erc721"},
		NativeSymbol:       "ETH",
		WrappedNative:      opStackWETH,
		GovernanceSymbol:   "AERO",
		GovernanceToken:    "0x940181a94A35A4569E4529A3CDfB74e38FD98631",
		GovernanceDecimals: 18,
		Multicall:          multicall3Address,
		Managers: map[string]Role{
			"0xcF77a3Ba9A5CA399B7c97c74d54e5b1Beb874E43": RoleRouter,
			"0x16613524e02ad97eDfeF371bC883F2F5d6C480A5": RoleVoter,
			"0xeBf418Fe2512e7E6bd9b87a8F0f294aCDC67e6B4": RoleVotingEscrow,
			"0x420DD381b31aEf6683db6B902084cB0FFECe40Da": RoleFactory,
			"0x6Cb442acF35158D5eDa88fe602221b67B400Be3E": RoleSwapper,
			"0x827922686190790b37229fd06084350E74485b72": RolePositionManager,
		},
		Exceptions: []string{
			"0x227f65131A261548b057215bB1D5Ab2997964C7d",
		},
		ABISources: DefaultABISources(),
	}
}

// OptimismDefinition describes Velodrome on Optimism.
func OptimismDefinition() ChainDefinition {
	return ChainDefinition{
		ChainID:            10,
		Name:               "optimism",
		Network:            "opt-mainnet",
		TransferCategories: []string{"external", "erc20", "erc721"},
		NativeSymbol:       "ETH",
		WrappedNative:      opStackWETH,
		GovernanceSymbol:   "VELO",
		GovernanceToken:    "0x9560e827aF36c94D2Ac33a39bCE1Fe78631088Db",
		GovernanceDecimals: 18,
		Multicall:          multicall3Address,
		Managers: map[string]Role{
			"0xa062aE8A9c5e11aaA026fc2670B0D65cCc8B2858": RoleRouter,
			"0x41C914ee0c7E1A5edCD0295623e6dC557B5aBf3C": RoleVoter,
			"0xFAf8FD17D9840595845582fCB047DF13f006787d": RoleVotingEscrow,
			"0xF1046053aa5682b4F9a81b5481394DA16BE5FF5a": RoleFactory,
			"0x01D40099fCD87C018969B0e8D4aB1633Fb34763C": RoleSwapper,
			"0x416b433906b1B72FA758e166e239c43d68dC6F29": RolePositionManager,
		},
		Exceptions: []string{
			"0x9D4736EC60715e71aFe72973f7885DCBC21EA99b",
		},
		ABISources: DefaultABISources(),
	}
}
