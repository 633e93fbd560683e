package order

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gookit/validate"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenithex/zenithex/config"
	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/matching"
	"github.com/zenithex/zenithex/metrics"
	"github.com/zenithex/zenithex/models"
	"github.com/zenithex/zenithex/mq_client"
	"github.com/zenithex/zenithex/pkg/fixedpoint"
	"github.com/zenithex/zenithex/types"
)

// Service is the order placement path: reserve a hold for the
// worst-case cost, match against the resting book, post a balanced
// journal entry per fill and drain the holds it authorized, all in
// one transaction per order.
type Service struct {
	mu       sync.Mutex
	books    map[string]*matching.Book
	MaxFills int
}

func NewService() *Service {
	return &Service{
		books:    make(map[string]*matching.Book),
		MaxFills: 100,
	}
}

type PlaceRequest struct {
	MemberID       uint64
	MarketID       string
	Side           types.OrderSide
	OrdType        types.OrderType
	Price          decimal.NullDecimal
	Quantity       decimal.Decimal
	IdempotencyKey string
}

// bookOf returns the market's in-memory depth view, creating it on
// first use.
func (s *Service) bookOf(marketID string) *matching.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[marketID]
	if !ok {
		book = matching.NewBook(marketID)
		s.books[marketID] = book
	}

	return book
}

// ReloadBooks rebuilds every in-memory book from storage. Called once
// at startup; the database stays the source of truth.
func (s *Service) ReloadBooks() error {
	var resting []*models.Order

	err := config.DataBase.
		Where("ord_type = ? AND status IN ?", types.TypeLimit,
			[]types.OrderStatus{types.StatusOpen, types.StatusPartiallyFilled}).
		Find(&resting).Error
	if err != nil {
		return err
	}

	for _, o := range resting {
		s.bookOf(o.MarketID).Insert(&matching.Order{
			ID:        o.ID,
			Side:      o.Side,
			Type:      o.OrdType,
			Price:     o.Price.Decimal,
			Remaining: o.RemainingQuantity,
			CreatedAt: o.CreatedAt,
		})
	}

	return nil
}

// Book exposes a market's depth view to the pricing and API layers.
func (s *Service) Book(marketID string) *matching.Book {
	return s.bookOf(marketID)
}

// PlaceOrder runs the full pipeline for one taker order. Safe to
// retry with the same idempotency key: the retried call returns the
// already-placed order untouched.
func (s *Service) PlaceOrder(req PlaceRequest) (*models.Order, []*models.Execution, error) {
	var order *models.Order
	var hold *models.Hold
	var executions []*models.Execution
	var bookOps []func()

	err := config.DataBase.Transaction(func(tx *gorm.DB) error {
		if req.IdempotencyKey != "" {
			if existing, ok := models.FindOrderByIdempotencyKey(tx, req.IdempotencyKey); ok {
				order = existing
				return nil
			}
		}

		market := &models.Market{}
		if err := tx.First(market, "symbol = ? AND enabled = ?", req.MarketID, true).Error; err != nil {
			return errs.ErrNotFound
		}

		quantity := market.RoundAmount(req.Quantity)
		if !quantity.IsPositive() || quantity.LessThan(market.MinAmount) {
			return errs.ErrInvalidAmount
		}

		price := req.Price
		if price.Valid {
			price = decimal.NewNullDecimal(market.RoundPrice(price.Decimal))
		}

		order = &models.Order{
			MemberID:          req.MemberID,
			MarketID:          market.Symbol,
			Side:              req.Side,
			OrdType:           req.OrdType,
			Price:             price,
			Quantity:          quantity,
			RemainingQuantity: quantity,
			Status:            types.StatusOpen,
			IdempotencyKey:    req.IdempotencyKey,
		}

		if v := validate.Struct(order); !v.Validate() {
			return errs.ErrInvalidAmount
		}

		locked, err := order.ComputeLocked(tx)
		if err != nil {
			return err
		}

		account, err := models.FindOrCreateAccount(tx, order.MemberID, order.OutcomeAssetID(market))
		if err != nil {
			return err
		}

		hold, err = models.CreateHold(tx, account, locked, types.HoldReasonOrder)
		if err != nil {
			return err
		}
		order.HoldID = hold.ID

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		makers, err := models.OpenMakers(tx, market.Symbol, order.Side)
		if err != nil {
			return err
		}

		makersByID := make(map[int64]*models.Order, len(makers))
		candidates := make([]*matching.Order, 0, len(makers))
		for _, m := range makers {
			makersByID[m.ID] = m
			candidates = append(candidates, &matching.Order{
				ID:        m.ID,
				Side:      m.Side,
				Type:      m.OrdType,
				Price:     m.Price.Decimal,
				Remaining: m.RemainingQuantity,
				CreatedAt: m.CreatedAt,
			})
		}

		result := matching.Match(&matching.Order{
			ID:        order.ID,
			Side:      order.Side,
			Type:      order.OrdType,
			Price:     order.Price.Decimal,
			Remaining: order.RemainingQuantity,
			CreatedAt: order.CreatedAt,
		}, candidates, s.MaxFills)

		for _, fill := range result.Fills {
			maker := makersByID[fill.MakerOrderID]

			execution, err := s.settleFill(tx, market, maker, order, fill)
			if err != nil {
				return err
			}
			executions = append(executions, execution)

			makerID := maker.ID
			makerRemaining := maker.RemainingQuantity
			bookOps = append(bookOps, func() {
				s.bookOf(market.Symbol).Reduce(makerID, makerRemaining)
			})
		}

		if err := s.finalizeTaker(tx, market, order); err != nil {
			return err
		}

		if !order.Terminal() {
			resting := &matching.Order{
				ID:        order.ID,
				Side:      order.Side,
				Type:      order.OrdType,
				Price:     order.Price.Decimal,
				Remaining: order.RemainingQuantity,
				CreatedAt: order.CreatedAt,
			}
			bookOps = append(bookOps, func() {
				s.bookOf(market.Symbol).Insert(resting)
			})
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	for _, op := range bookOps {
		op()
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.OrdType)).Inc()
	if hold != nil {
		s.notifyHold(order.MemberID, hold, "hold_created")
	}
	s.notifyOrder(order)
	for _, execution := range executions {
		s.notifyExecution(execution)
	}

	return order, executions, nil
}

// settleFill persists one execution: the immutable fill row, the
// balanced journal entry moving both legs plus fees, the hold
// decrements the entry was authorized by, and both orders' remaining
// quantity and status.
func (s *Service) settleFill(tx *gorm.DB, market *models.Market, maker, taker *models.Order, fill matching.PlannedFill) (*models.Execution, error) {
	buyer, seller := taker, maker
	if taker.Side == types.SideSell {
		buyer, seller = maker, taker
	}

	total := fixedpoint.MulRound(fill.Price, fill.Quantity)

	// Fees come out of the received asset: base for the buyer, quote
	// for the seller, at maker or taker bps by role.
	buyerBps, sellerBps := market.MakerFeeBps, market.TakerFeeBps
	if buyer == taker {
		buyerBps, sellerBps = market.TakerFeeBps, market.MakerFeeBps
	}
	buyerFee := fixedpoint.BpsFeeCeil(fill.Quantity, buyerBps)
	sellerFee := fixedpoint.BpsFeeCeil(total, sellerBps)

	makerFee, makerFeeAsset := sellerFee, market.QuoteAssetID
	takerFee, takerFeeAsset := buyerFee, market.BaseAssetID
	if maker == buyer {
		makerFee, makerFeeAsset = buyerFee, market.BaseAssetID
		takerFee, takerFeeAsset = sellerFee, market.QuoteAssetID
	}

	execution := &models.Execution{
		MarketID:        market.Symbol,
		MakerOrderID:    maker.ID,
		TakerOrderID:    taker.ID,
		Price:           fill.Price,
		Quantity:        fill.Quantity,
		Total:           total,
		MakerFee:        makerFee,
		MakerFeeAssetID: makerFeeAsset,
		TakerFee:        takerFee,
		TakerFeeAssetID: takerFeeAsset,
		TakerSide:       taker.Side,
	}
	if err := tx.Create(execution).Error; err != nil {
		return nil, err
	}

	sellerBase, err := models.FindOrCreateAccount(tx, seller.MemberID, market.BaseAssetID)
	if err != nil {
		return nil, err
	}
	sellerQuote, err := models.FindOrCreateAccount(tx, seller.MemberID, market.QuoteAssetID)
	if err != nil {
		return nil, err
	}
	buyerBase, err := models.FindOrCreateAccount(tx, buyer.MemberID, market.BaseAssetID)
	if err != nil {
		return nil, err
	}
	buyerQuote, err := models.FindOrCreateAccount(tx, buyer.MemberID, market.QuoteAssetID)
	if err != nil {
		return nil, err
	}
	feeBase, err := models.FeeCollectorAccount(tx, market.BaseAssetID)
	if err != nil {
		return nil, err
	}
	feeQuote, err := models.FeeCollectorAccount(tx, market.QuoteAssetID)
	if err != nil {
		return nil, err
	}

	lines := []models.JournalLine{
		{AccountID: sellerBase.ID, AssetID: market.BaseAssetID, Amount: fill.Quantity.Neg()},
		{AccountID: buyerBase.ID, AssetID: market.BaseAssetID, Amount: fill.Quantity.Sub(buyerFee)},
		{AccountID: feeBase.ID, AssetID: market.BaseAssetID, Amount: buyerFee},
		{AccountID: buyerQuote.ID, AssetID: market.QuoteAssetID, Amount: total.Neg()},
		{AccountID: sellerQuote.ID, AssetID: market.QuoteAssetID, Amount: total.Sub(sellerFee)},
		{AccountID: feeQuote.ID, AssetID: market.QuoteAssetID, Amount: sellerFee},
	}

	reference := fmt.Sprintf("execution:%d", execution.ID)
	entry, err := models.PostEntry(tx, types.EntryTrade, reference, "", lines)
	if err != nil {
		return nil, err
	}

	sellerOutcome, buyerOutcome := fill.Quantity, total
	if err := s.drainHold(tx, seller, sellerOutcome, entry.ID); err != nil {
		return nil, err
	}
	if err := s.drainHold(tx, buyer, buyerOutcome, entry.ID); err != nil {
		return nil, err
	}

	for _, o := range []*models.Order{maker, taker} {
		o.RemainingQuantity = o.RemainingQuantity.Sub(fill.Quantity)
		o.TradesCount++

		if o.Filled() {
			o.Status = types.StatusFilled
			if err := s.releaseLeftoverHold(tx, o); err != nil {
				return nil, err
			}
		} else {
			o.Status = types.StatusPartiallyFilled
		}

		if err := tx.Save(o).Error; err != nil {
			return nil, err
		}
	}

	return execution, nil
}

// drainHold consumes the part of the order's hold the entry moved.
func (s *Service) drainHold(tx *gorm.DB, o *models.Order, amount decimal.Decimal, entryID uint64) error {
	hold := &models.Hold{ID: o.HoldID}
	if err := tx.First(hold, "id = ?", o.HoldID).Error; err != nil {
		return errs.ErrTradeStateConflict
	}

	if hold.Status != types.HoldActive {
		return errs.ErrTradeStateConflict
	}

	return hold.Decrement(tx, amount, entryID)
}

// releaseLeftoverHold returns any reservation not consumed by fills:
// price improvement on buys, market order remainders.
func (s *Service) releaseLeftoverHold(tx *gorm.DB, o *models.Order) error {
	hold := &models.Hold{}
	if err := tx.First(hold, "id = ?", o.HoldID).Error; err != nil {
		return err
	}

	if hold.Status != types.HoldActive {
		return nil
	}

	return hold.Release(tx)
}

// finalizeTaker settles the taker's terminal state after the sweep:
// market order remainders cancel, filled orders free their leftover
// reservation, limit remainders rest on the book.
func (s *Service) finalizeTaker(tx *gorm.DB, market *models.Market, order *models.Order) error {
	if order.Filled() {
		order.Status = types.StatusFilled
		if err := s.releaseLeftoverHold(tx, order); err != nil {
			return err
		}
		return tx.Save(order).Error
	}

	if order.IsMarketOrder() {
		// Unfillable remainder: a market order never rests.
		order.Status = types.StatusCanceled
		if err := s.releaseLeftoverHold(tx, order); err != nil {
			return err
		}
		return tx.Save(order).Error
	}

	if order.Status != types.StatusOpen && order.Status != types.StatusPartiallyFilled {
		return errs.ErrTradeStateConflict
	}

	return tx.Save(order).Error
}

// CancelOrder releases the remaining hold and closes the order.
func (s *Service) CancelOrder(orderUUID string, memberID uint64) (*models.Order, error) {
	var order *models.Order
	var hold *models.Hold

	err := config.DataBase.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "uuid = ? AND member_id = ?", orderUUID, memberID).Error; err != nil {
			return errs.ErrNotFound
		}

		if order.Terminal() {
			return errs.ErrTradeStateConflict
		}

		if err := s.releaseLeftoverHold(tx, order); err != nil {
			return err
		}

		hold = &models.Hold{}
		if err := tx.First(hold, "id = ?", order.HoldID).Error; err != nil {
			return err
		}

		order.Status = types.StatusCanceled
		return tx.Save(order).Error
	})

	if err != nil {
		return nil, err
	}

	s.bookOf(order.MarketID).Remove(order.ID)
	s.notifyHold(order.MemberID, hold, "hold_released")
	s.notifyOrder(order)

	return order, nil
}

// PlaceConditional submits the taker order for a triggered
// conditional leg. The idempotency key is derived from the
// conditional order and leg, so a crashed attempt resubmitted by a
// later evaluator run lands on the same order.
func (s *Service) PlaceConditional(co *models.ConditionalOrder, leg types.ConditionalLeg) (*models.Order, error) {
	limitPrice, err := conditionalLegLimit(co, leg)
	if err != nil {
		return nil, err
	}

	order, _, err := s.PlaceOrder(PlaceRequest{
		MemberID:       co.MemberID,
		MarketID:       co.MarketID,
		Side:           co.Side,
		OrdType:        types.TypeLimit,
		Price:          decimal.NewNullDecimal(limitPrice),
		Quantity:       co.Quantity,
		IdempotencyKey: fmt.Sprintf("conditional:%d:%s", co.ID, leg),
	})

	return order, err
}

func conditionalLegLimit(co *models.ConditionalOrder, leg types.ConditionalLeg) (decimal.Decimal, error) {
	if leg == types.LegTakeProfit {
		if !co.TakeProfitPrice.Valid {
			return decimal.Zero, errs.ErrTradeStateConflict
		}
		return co.TakeProfitPrice.Decimal, nil
	}

	if co.LimitPrice.Valid {
		return co.LimitPrice.Decimal, nil
	}

	// Trailing stops without an explicit limit go out at the stop.
	if co.TrailingStopPrice.Valid {
		return co.TrailingStopPrice.Decimal, nil
	}

	return decimal.Zero, errs.ErrTradeStateConflict
}

// PlaceTwapSlice submits one TWAP slice as a market taker, keyed
// (twap_id, slice_index).
func (s *Service) PlaceTwapSlice(t *models.TwapOrder, sliceIndex int64, quantity decimal.Decimal) (*models.Order, error) {
	order, _, err := s.PlaceOrder(PlaceRequest{
		MemberID:       t.MemberID,
		MarketID:       t.MarketID,
		Side:           t.Side,
		OrdType:        types.TypeMarket,
		Quantity:       quantity,
		IdempotencyKey: fmt.Sprintf("twap:%d:%d", t.ID, sliceIndex),
	})

	return order, err
}

func (s *Service) notifyHold(memberID uint64, hold *models.Hold, event string) {
	mq_client.EnqueueEvent("private", strconv.FormatUint(memberID, 10), event, hold)
}

func (s *Service) notifyOrder(order *models.Order) {
	mq_client.EnqueueEvent("private", strconv.FormatUint(order.MemberID, 10), "order", order)
}

func (s *Service) notifyExecution(execution *models.Execution) {
	mq_client.EnqueueEvent("public", execution.MarketID, "execution", map[string]interface{}{
		"id":         execution.ID,
		"market":     execution.MarketID,
		"price":      execution.Price,
		"quantity":   execution.Quantity,
		"total":      execution.Total,
		"taker_side": execution.TakerSide,
		"created_at": execution.CreatedAt.Format(time.RFC3339),
	})
}
