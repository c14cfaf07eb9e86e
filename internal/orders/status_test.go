package orders

import (
	"testing"

	"github.com/dmarceau/cartline-backend/pkg/enums"
)

func TestCanTransitionForwardPath(t *testing.T) {
	steps := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusProcessing},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
	}
	for _, step := range steps {
		if !CanTransition(step.from, step.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", step.from, step.to)
		}
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	if CanTransition(enums.OrderStatusPending, enums.OrderStatusShipped) {
		t.Error("pending must not jump to shipped")
	}
	if CanTransition(enums.OrderStatusPending, enums.OrderStatusDelivered) {
		t.Error("pending must not jump to delivered")
	}
	if CanTransition(enums.OrderStatusShipped, enums.OrderStatusProcessing) {
		t.Error("transitions must not move backwards")
	}
}

func TestCanTransitionTerminalStates(t *testing.T) {
	terminals := []enums.OrderStatus{
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	}
	for _, from := range terminals {
		for _, to := range []enums.OrderStatus{
			enums.OrderStatusPending,
			enums.OrderStatusProcessing,
			enums.OrderStatusCancelled,
			enums.OrderStatusRefunded,
		} {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestCancelAndRefundReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
	} {
		if !CanTransition(from, enums.OrderStatusCancelled) {
			t.Errorf("cancelled must be reachable from %s", from)
		}
		if !CanTransition(from, enums.OrderStatusRefunded) {
			t.Errorf("refunded must be reachable from %s", from)
		}
	}
}
