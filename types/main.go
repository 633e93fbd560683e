package types

type OrderSide = string

var (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderType = string

var (
	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"
)

type OrderStatus = string

var (
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
)

type HoldStatus = string

var (
	HoldActive   HoldStatus = "active"
	HoldReleased HoldStatus = "released"
	HoldConsumed HoldStatus = "consumed"
)

type HoldReason = string

var (
	HoldReasonOrder     HoldReason = "order"
	HoldReasonP2PEscrow HoldReason = "p2p_escrow"
	HoldReasonVault     HoldReason = "vault"
)

type ConditionalKind = string

var (
	KindStopLimit    ConditionalKind = "stop_limit"
	KindOco          ConditionalKind = "oco"
	KindTrailingStop ConditionalKind = "trailing_stop"
)

type ConditionalStatus = string

var (
	ConditionalActive     ConditionalStatus = "active"
	ConditionalTriggering ConditionalStatus = "triggering"
	ConditionalTriggered  ConditionalStatus = "triggered"
	ConditionalCanceled   ConditionalStatus = "canceled"
	ConditionalFailed     ConditionalStatus = "failed"
)

type ConditionalLeg = string

var (
	LegStop       ConditionalLeg = "stop"
	LegTakeProfit ConditionalLeg = "take_profit"
)

type TwapStatus = string

var (
	TwapActive    TwapStatus = "active"
	TwapCompleted TwapStatus = "completed"
	TwapCanceled  TwapStatus = "canceled"
)

type EntryType = string

var (
	EntryTrade        EntryType = "trade"
	EntryTradeFee     EntryType = "trade_fee"
	EntryDeposit      EntryType = "deposit"
	EntryWithdrawal   EntryType = "withdrawal"
	EntryP2PTrade     EntryType = "p2p_trade"
	EntryEarnInterest EntryType = "earn_interest"
)
