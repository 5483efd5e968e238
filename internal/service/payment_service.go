package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/product"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/payment"
)

const (
	redisSeenKey = "payment:seen:%s:%s" // method, correlation id
	seenExpiry   = "86400"
)

// Result message keys, resolved to copy by the storefront i18n layer.
const (
	MsgPaymentVerified        = "paymentVerified"
	MsgInvalidCallback        = "invalidCallback"
	MsgOrderNotFound          = "orderNotFound"
	MsgGatewayConfigError     = "gatewayConfigError"
	MsgNetworkError           = "networkError"
	MsgEsewaInvalidSignature  = "eSewaInvalidSignature"
	MsgEsewaStatusNotComplete = "eSewaStatusNotComplete"
	MsgUserCancelled          = "verificationUserCancelled"
	MsgVerificationPending    = "verificationPending"
	MsgVerificationExpired    = "verificationExpired"
	MsgVerificationFailed     = "verificationFailed"
	MsgAlreadySettled         = "verificationAlreadySettled"
)

// VerificationResult is what the callback endpoint renders. Failures never
// surface as raw errors to the browser.
type VerificationResult struct {
	Success    bool   `json:"success"`
	OrderID    int64  `json:"order_id,omitempty"`
	MessageKey string `json:"message_key"`
}

// PaymentService drives callback verification end to end: locate the
// order by its gateway correlation id, authenticate the payload, confirm
// against the provider ledger, and apply the outcome through the
// compare-and-set lifecycle transition. Redis and MQ collaborators are
// nil-tolerant so tests run without infrastructure.
type PaymentService struct {
	orderRepo    order.Repository
	storeRepo    store.Repository
	productRepo  product.Repository
	activityRepo activity.Repository
	redis        radix.Client
	events       EventPublisher
	payCfg       *config.PaymentConfig
	client       *http.Client
}

// NewPaymentService builds the verification service.
func NewPaymentService(
	orderRepo order.Repository,
	storeRepo store.Repository,
	productRepo product.Repository,
	activityRepo activity.Repository,
	redis radix.Client,
	events EventPublisher,
	payCfg *config.PaymentConfig,
) *PaymentService {
	if payCfg == nil {
		payCfg = &config.DefaultConfig().Payment
	}
	return &PaymentService{
		orderRepo:    orderRepo,
		storeRepo:    storeRepo,
		productRepo:  productRepo,
		activityRepo: activityRepo,
		redis:        redis,
		events:       events,
		payCfg:       payCfg,
		client:       &http.Client{Timeout: payCfg.HTTPTimeout()},
	}
}

// VerifyEsewaCallback handles the eSewa redirect: decode, locate, check
// the tenant HMAC, then confirm against eSewa's own ledger before any
// state moves.
func (s *PaymentService) VerifyEsewaCallback(ctx context.Context, data string) *VerificationResult {
	GetMonitor().RecordCallback()

	cb, err := payment.DecodeEsewaCallback(data)
	if err != nil {
		zap.L().Warn("esewa callback rejected", zap.Error(err))
		return &VerificationResult{MessageKey: MsgInvalidCallback}
	}

	o, err := s.orderRepo.GetByTransactionUUID(ctx, cb.TransactionUUID)
	if err != nil {
		zap.L().Warn("esewa callback for unknown order",
			zap.String("transaction_uuid", cb.TransactionUUID))
		return &VerificationResult{MessageKey: MsgOrderNotFound}
	}
	if res := s.settledNoop(ctx, o, string(order.MethodEsewa), cb.TransactionUUID); res != nil {
		return res
	}

	st, err := s.storeRepo.GetByID(ctx, o.StoreID)
	if err != nil || st.Payment.EsewaSecretKey == "" {
		s.failOrder(ctx, o, order.StatusFailed, MsgGatewayConfigError, cb.TransactionUUID)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgGatewayConfigError}
	}

	if err := payment.VerifyEsewaSignature(cb, st.Payment.EsewaSecretKey); err != nil {
		GetMonitor().RecordSignatureFailure()
		zap.L().Warn("esewa signature mismatch",
			zap.Int64("order_id", o.ID),
			zap.String("transaction_uuid", cb.TransactionUUID))
		s.failOrder(ctx, o, order.StatusFailed, MsgEsewaInvalidSignature, cb.TransactionUUID)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgEsewaInvalidSignature}
	}

	gw, err := payment.ForOrder(o, st, s.payCfg, s.client)
	if err != nil {
		s.failOrder(ctx, o, order.StatusFailed, MsgGatewayConfigError, cb.TransactionUUID)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgGatewayConfigError}
	}

	// Mandatory even with a valid signature: the redirect payload is
	// client-observable; only the provider ledger is authoritative.
	confirm, err := gw.Confirm(ctx, o)
	if err != nil {
		GetMonitor().RecordNetworkError()
		zap.L().Error("esewa status check failed", zap.Int64("order_id", o.ID), zap.Error(err))
		s.failOrder(ctx, o, order.StatusFailed, MsgNetworkError, cb.TransactionUUID)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgNetworkError}
	}
	if confirm.Status != payment.StatusComplete {
		s.failOrder(ctx, o, order.StatusFailed, MsgEsewaStatusNotComplete, cb.TransactionUUID)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgEsewaStatusNotComplete}
	}

	return s.completeOrder(ctx, o, cb.TransactionUUID, map[string]any{"ref_id": confirm.RefID})
}

// VerifyKhaltiCallback handles the Khalti redirect. The query parameters
// only locate the order and short-circuit an explicit user cancellation;
// success is decided solely by the lookup call.
func (s *PaymentService) VerifyKhaltiCallback(ctx context.Context, pidx, redirectStatus string) *VerificationResult {
	GetMonitor().RecordCallback()

	if pidx == "" {
		return &VerificationResult{MessageKey: MsgInvalidCallback}
	}
	o, err := s.orderRepo.GetByPidx(ctx, pidx)
	if err != nil {
		zap.L().Warn("khalti callback for unknown order", zap.String("pidx", pidx))
		return &VerificationResult{MessageKey: MsgOrderNotFound}
	}
	if res := s.settledNoop(ctx, o, string(order.MethodKhalti), pidx); res != nil {
		return res
	}

	// Explicit user cancellation needs no lookup round trip.
	if redirectStatus == "User canceled" {
		s.failOrder(ctx, o, order.StatusCancelled, MsgUserCancelled, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgUserCancelled}
	}

	st, err := s.storeRepo.GetByID(ctx, o.StoreID)
	if err != nil || st.Payment.KhaltiSecretKey == "" {
		s.failOrder(ctx, o, order.StatusFailed, MsgGatewayConfigError, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgGatewayConfigError}
	}
	gw, err := payment.ForOrder(o, st, s.payCfg, s.client)
	if err != nil {
		s.failOrder(ctx, o, order.StatusFailed, MsgGatewayConfigError, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgGatewayConfigError}
	}

	confirm, err := gw.Confirm(ctx, o)
	if err != nil {
		GetMonitor().RecordNetworkError()
		zap.L().Error("khalti lookup failed", zap.Int64("order_id", o.ID), zap.Error(err))
		s.failOrder(ctx, o, order.StatusFailed, MsgNetworkError, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgNetworkError}
	}

	switch confirm.Status {
	case payment.StatusComplete:
		return s.completeOrder(ctx, o, pidx, map[string]any{"transaction_id": confirm.TransactionID})
	case payment.StatusPending:
		// The gateway may still settle; forcing failed here would be wrong.
		s.audit(ctx, o.StoreID, "payment.pending", o.ID, pidx, "khalti lookup pending")
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgVerificationPending}
	case payment.StatusUserCancelled:
		s.failOrder(ctx, o, order.StatusCancelled, MsgUserCancelled, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgUserCancelled}
	case payment.StatusExpired:
		s.failOrder(ctx, o, order.StatusFailed, MsgVerificationExpired, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgVerificationExpired}
	default:
		s.failOrder(ctx, o, order.StatusFailed, MsgVerificationFailed, pidx)
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgVerificationFailed}
	}
}

// settledNoop resolves callbacks the state machine must ignore: orders in
// a verification-terminal state, and processing orders that already carry
// a provider reference from an earlier verified callback. Re-verifying a
// settled order against a fresh payload is a replay vector, so the
// duplicate is recorded and the stored outcome reported instead.
func (s *PaymentService) settledNoop(ctx context.Context, o *order.Order, method, ref string) *VerificationResult {
	verified := o.RefID != "" || o.TransactionID != ""
	if o.Status == order.StatusPending || (o.Status == order.StatusProcessing && !verified) {
		return nil
	}
	GetMonitor().RecordDuplicate()
	s.markSeen(method, ref)
	s.audit(ctx, o.StoreID, "payment.duplicate_callback", o.ID, ref, fmt.Sprintf("order already %s", o.Status))
	if o.Status == order.StatusFailed || o.Status == order.StatusCancelled {
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgAlreadySettled}
	}
	return &VerificationResult{Success: true, OrderID: o.ID, MessageKey: MsgPaymentVerified}
}

// completeOrder wins (or concedes) the transition into processing. Orders
// checkout created directly in processing (no provider reference yet) get
// a second compare-and-set keyed on that snapshot; a concurrent callback
// that already moved a pending order on makes the first set miss, and the
// stale pending snapshot stops the retry.
func (s *PaymentService) completeOrder(ctx context.Context, o *order.Order, ref string, updates map[string]any) *VerificationResult {
	ok, err := s.orderRepo.UpdateStatusFrom(ctx, o.ID,
		[]order.Status{order.StatusPending}, order.StatusProcessing, updates)
	if err == nil && !ok && o.Status == order.StatusProcessing {
		ok, err = s.orderRepo.UpdateStatusFrom(ctx, o.ID,
			[]order.Status{order.StatusProcessing}, order.StatusProcessing, updates)
	}
	if err != nil {
		zap.L().Error("order transition failed", zap.Int64("order_id", o.ID), zap.Error(err))
		return &VerificationResult{OrderID: o.ID, MessageKey: MsgVerificationFailed}
	}
	if !ok {
		// A concurrent callback won; payment stands either way.
		GetMonitor().RecordDuplicate()
		s.audit(ctx, o.StoreID, "payment.duplicate_callback", o.ID, ref, "lost transition race")
		return &VerificationResult{Success: true, OrderID: o.ID, MessageKey: MsgPaymentVerified}
	}

	GetMonitor().RecordVerified()
	s.markSeen(string(o.PaymentMethod), ref)
	s.audit(ctx, o.StoreID, "payment.verified", o.ID, ref, "")
	s.publishEvent(ctx, &OrderEvent{
		OrderID:    o.ID,
		StoreID:    o.StoreID,
		Status:     order.StatusProcessing,
		Method:     o.PaymentMethod,
		MessageKey: MsgPaymentVerified,
	})
	zap.L().Info("payment verified",
		zap.Int64("order_id", o.ID),
		zap.String("method", string(o.PaymentMethod)),
		zap.String("reference", ref))
	return &VerificationResult{Success: true, OrderID: o.ID, MessageKey: MsgPaymentVerified}
}

// failOrder moves a pending/processing order to failed or cancelled,
// restocking at most once via the stock-decremented flag. Losing the
// transition race means another request settled the order first.
func (s *PaymentService) failOrder(ctx context.Context, o *order.Order, to order.Status, messageKey, ref string) {
	updates := map[string]any{}
	if o.StockDecremented {
		updates["stock_decremented"] = false
	}
	ok, err := s.orderRepo.UpdateStatusFrom(ctx, o.ID, order.VerificationStates(), to, updates)
	if err != nil {
		zap.L().Error("order transition failed", zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}
	if !ok {
		GetMonitor().RecordDuplicate()
		return
	}

	// Only the CAS winner reaches here, so items restock exactly once.
	if o.StockDecremented && s.productRepo != nil {
		for _, item := range o.Items {
			if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				zap.L().Error("restock failed",
					zap.Int64("order_id", o.ID),
					zap.Int64("product_id", item.ProductID),
					zap.Error(err))
			}
		}
	}

	s.audit(ctx, o.StoreID, "payment."+string(to), o.ID, ref, messageKey)
	s.publishEvent(ctx, &OrderEvent{
		OrderID:    o.ID,
		StoreID:    o.StoreID,
		Status:     to,
		Method:     o.PaymentMethod,
		MessageKey: messageKey,
	})
}

// markSeen keeps a rolling duplicate-delivery counter per correlation id.
func (s *PaymentService) markSeen(method, ref string) {
	if s.redis == nil || ref == "" {
		return
	}
	key := fmt.Sprintf(redisSeenKey, method, ref)
	var seen int
	if err := s.redis.Do(radix.Cmd(&seen, "INCR", key)); err != nil {
		zap.L().Warn("duplicate marker failed", zap.String("key", key), zap.Error(err))
		return
	}
	if seen == 1 {
		_ = s.redis.Do(radix.Cmd(nil, "EXPIRE", key, seenExpiry))
	}
}

func (s *PaymentService) audit(ctx context.Context, storeID int64, action string, orderID int64, ref, detail string) {
	if s.activityRepo == nil {
		return
	}
	err := s.activityRepo.Append(ctx, &activity.Entry{
		EntryUID:  uuid.NewString(),
		StoreID:   storeID,
		Action:    action,
		OrderID:   orderID,
		Reference: ref,
		Detail:    detail,
	})
	if err != nil {
		zap.L().Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *PaymentService) publishEvent(ctx context.Context, ev *OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		zap.L().Error("event publish failed", zap.Int64("order_id", ev.OrderID), zap.Error(err))
	}
}
