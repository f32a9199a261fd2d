package config

// Weight records are fixed-field structs. Array returns the weights in the
// order the matching model evaluates its metrics, so the two cannot drift.

type BankWeights struct {
	Credit    CreditWeights    `yaml:"credit"`
	Velocity  VelocityWeights  `yaml:"velocity"`
	Stability StabilityWeights `yaml:"stability"`
	Diversity DiversityWeights `yaml:"diversity"`
	Score     BankScoreWeights `yaml:"score"`
	Penalty   BankScoreWeights `yaml:"penalty"`
}

type CreditWeights struct {
	Limit      float64 `yaml:"limit"`
	UtilRatio  float64 `yaml:"util_ratio"`
	Interest   float64 `yaml:"interest"`
	Length     float64 `yaml:"length"`
	Livelihood float64 `yaml:"livelihood"`
}

func (w CreditWeights) Array() [5]float64 {
	return [5]float64{w.Limit, w.UtilRatio, w.Interest, w.Length, w.Livelihood}
}

type VelocityWeights struct {
	Withdrawals float64 `yaml:"withdrawals"`
	Deposits    float64 `yaml:"deposits"`
	NetFlow     float64 `yaml:"net_flow"`
	TxnCount    float64 `yaml:"txn_count"`
	Slope       float64 `yaml:"slope"`
}

func (w VelocityWeights) Array() [5]float64 {
	return [5]float64{w.Withdrawals, w.Deposits, w.NetFlow, w.TxnCount, w.Slope}
}

type StabilityWeights struct {
	Balance        float64 `yaml:"balance"`
	RunningBalance float64 `yaml:"running_balance"`
}

func (w StabilityWeights) Array() [2]float64 {
	return [2]float64{w.Balance, w.RunningBalance}
}

type DiversityWeights struct {
	AccountCount float64 `yaml:"account_count"`
	Profile      float64 `yaml:"profile"`
}

func (w DiversityWeights) Array() [2]float64 {
	return [2]float64{w.AccountCount, w.Profile}
}

type BankScoreWeights struct {
	Credit    float64 `yaml:"credit"`
	Velocity  float64 `yaml:"velocity"`
	Stability float64 `yaml:"stability"`
	Diversity float64 `yaml:"diversity"`
}

func (w BankScoreWeights) Array() [4]float64 {
	return [4]float64{w.Credit, w.Velocity, w.Stability, w.Diversity}
}

func (w BankScoreWeights) Sum() float64 {
	return w.Credit + w.Velocity + w.Stability + w.Diversity
}

type ExchangeWeights struct {
	Liquidity LiquidityWeights     `yaml:"liquidity"`
	Activity  ActivityWeights      `yaml:"activity"`
	Score     ExchangeScoreWeights `yaml:"score"`
}

type LiquidityWeights struct {
	Balance        float64 `yaml:"balance"`
	RunningBalance float64 `yaml:"running_balance"`
}

func (w LiquidityWeights) Array() [2]float64 {
	return [2]float64{w.Balance, w.RunningBalance}
}

type ActivityWeights struct {
	CreditVolume      float64 `yaml:"credit_volume"`
	DebitVolume       float64 `yaml:"debit_volume"`
	CreditConsistency float64 `yaml:"credit_consistency"`
	DebitConsistency  float64 `yaml:"debit_consistency"`
	Profit            float64 `yaml:"profit"`
}

func (w ActivityWeights) Array() [5]float64 {
	return [5]float64{w.CreditVolume, w.DebitVolume, w.CreditConsistency, w.DebitConsistency, w.Profit}
}

type ExchangeScoreWeights struct {
	KYC       float64 `yaml:"kyc"`
	History   float64 `yaml:"history"`
	Liquidity float64 `yaml:"liquidity"`
	Activity  float64 `yaml:"activity"`
}

func (w ExchangeScoreWeights) Array() [4]float64 {
	return [4]float64{w.KYC, w.History, w.Liquidity, w.Activity}
}
