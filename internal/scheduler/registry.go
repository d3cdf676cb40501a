package scheduler

const (
	StrategyEven            = "even"
	StrategyBalanceDayNight = "balance_day_night"
	StrategyMinimizeDays    = "minimize_days"
)

// 策略都是无状态的值类型，可以直接共享
var strategies = map[string]Strategy{
	StrategyEven:            EvenDistribution{},
	StrategyBalanceDayNight: BalanceDayNight{},
	StrategyMinimizeDays:    MinimizeDays{},
}

// Resolve 根据名称（区分大小写）获取排班策略
func Resolve(name string) (Strategy, error) {
	strategy, ok := strategies[name]
	if !ok {
		return nil, &UnknownStrategyError{Name: name}
	}
	return strategy, nil
}

// StrategyNames 返回所有支持的策略名称
func StrategyNames() []string {
	return []string{StrategyEven, StrategyBalanceDayNight, StrategyMinimizeDays}
}
