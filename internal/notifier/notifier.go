package notifier

import (
	"context"
	"log"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/domain"
)

// Notifier consumes terminal declaration events and records an applicant-facing
// notification line for each. Delivery is best-effort: events the bus drops are
// simply never seen here, and the record store stays the source of truth.
type Notifier struct {
	eventBus ports.EventBus
}

func NewNotifier(bus ports.EventBus) *Notifier {
	return &Notifier{eventBus: bus}
}

// Start begins the listening loop. Call this in main.go as a goroutine.
func (n *Notifier) Start(ctx context.Context) {
	log.Println("Notifier started, listening for declaration updates...")

	eventChannel, err := n.eventBus.SubscribeToDeclarationUpdates(ctx)
	if err != nil {
		log.Printf("Notifier: failed to subscribe to event bus: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Notifier shutting down...")
			return

		case event, ok := <-eventChannel:
			if !ok {
				return
			}
			n.handleDeclarationUpdated(event)
		}
	}
}

func (n *Notifier) handleDeclarationUpdated(event domain.DeclarationUpdatedEvent) {
	log.Printf("Notifier: declaration %d moved %s -> %s: %s (%s)",
		event.DeclarationID, event.OldStatus, event.NewStatus,
		event.Description, event.UpdateReason)
}
