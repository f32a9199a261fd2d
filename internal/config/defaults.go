package config

// Default returns the built-in parameter set: a single tier covering loans
// up to 25,000 USD.
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			ScoreBounds: []float64{300, 500, 560, 650, 740, 800, 870, 900},
			LoanBins:    []float64{0.5, 1, 5, 10, 15, 20, 25},
			Qualities:   []string{"very poor", "poor", "fair", "good", "very good", "excellent", "exceptional"},
		},
		Tiers: []Tier{
			{
				MaximumAmount: 25000,
				Bank:          defaultBankTier(),
				Exchange:      defaultExchangeTier(),
			},
		},
		Validation: ValidationConfig{WeightSumTolerance: defaultTolerance},
	}
}

func defaultBankTier() BankTier {
	return BankTier{
		Weights: BankWeights{
			Credit:    CreditWeights{Limit: 0.45, UtilRatio: 0.12, Interest: 0.05, Length: 0.26, Livelihood: 0.12},
			Velocity:  VelocityWeights{Withdrawals: 0.16, Deposits: 0.25, NetFlow: 0.25, TxnCount: 0.16, Slope: 0.18},
			Stability: StabilityWeights{Balance: 0.70, RunningBalance: 0.30},
			Diversity: DiversityWeights{AccountCount: 0.40, Profile: 0.60},
			Score:     BankScoreWeights{Credit: 0.42, Velocity: 0.20, Stability: 0.28, Diversity: 0.10},
			// sums to 0.95: lacking a credit product caps the score
			Penalty: BankScoreWeights{Credit: 0, Velocity: 0.33, Stability: 0.42, Diversity: 0.20},
		},
		Metrics: BankMetrics{
			DueDate:       []float64{3, 4, 5},
			Duration:      []float64{90, 120, 150, 180, 210, 270},
			CountZero:     []float64{1, 2},
			VolumeCredit:  []float64{0.5, 1, 5, 8, 13, 18},
			VolumeInvest:  []float64{0.5, 1, 2, 4, 6, 8},
			VolumeBalance: []float64{3, 5, 9, 12, 15, 18},
			FlowRatio:     []float64{0.7, 1, 1.4, 2, 3, 4},
			Slope:         []float64{0.5, 0.8, 1, 1.3, 1.6, 2},
			SlopeLR:       []float64{-0.5, 0, 0.5, 1, 1.5, 2},
		},
		Matrices: BankMatrices{
			ActivityVolume:      MatrixSpec{Shape: []int{7, 7}, Scalars: []float64{3.03, 1.17}},
			ActivityConsistency: MatrixSpec{Shape: []int{7, 7}, Scalars: []float64{1.85, 1.55}},
			CreditMix:           MatrixSpec{Shape: []int{3, 7}, Scalars: []float64{1.2, 1.4}},
			DiversityVelocity:   MatrixSpec{Shape: []int{3, 7}, Scalars: []float64{1.73, 1.17}},
		},
	}
}

func defaultExchangeTier() ExchangeTier {
	return ExchangeTier{
		Weights: ExchangeWeights{
			Liquidity: LiquidityWeights{Balance: 0.60, RunningBalance: 0.40},
			Activity: ActivityWeights{
				CreditVolume: 0.2, DebitVolume: 0.2,
				CreditConsistency: 0.2, DebitConsistency: 0.2,
				Profit: 0.2,
			},
			Score: ExchangeScoreWeights{KYC: 0.10, History: 0.10, Liquidity: 0.40, Activity: 0.40},
		},
		Metrics: ExchangeMetrics{
			DueDate:       []float64{3, 4, 5},
			Duration:      []float64{90, 120, 150, 180, 210, 270},
			VolumeBalance: []float64{5, 6.5, 8.5, 11, 13, 15},
			VolumeProfit:  []float64{0.5, 1, 2, 2.5, 3, 4},
			CountTxn:      []float64{10, 20, 30, 35, 40, 50},
		},
		Matrices: ExchangeMatrices{
			ActivityVolume:      MatrixSpec{Shape: []int{7, 7}, Scalars: []float64{3.03, 1.17}},
			ActivityConsistency: MatrixSpec{Shape: []int{7, 7}, Scalars: []float64{1.85, 1.55}},
		},
	}
}
