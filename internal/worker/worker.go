package worker

import (
	"context"
	"log"

	"github.com/google/uuid"

	"sci-z-declaration/internal/core/ports"
	"sci-z-declaration/internal/workflow"
)

// Worker pulls workflow jobs off the queue and hands each to the orchestrator.
// One job occupies one goroutine for the whole run, which blocks for minutes
// on the remote workflow call; size the pool for long-tail latency and keep it
// separate from request-handling goroutines.
type Worker struct {
	workerID     string
	queue        ports.JobQueue
	orchestrator *workflow.Orchestrator
}

func NewWorker(queue ports.JobQueue, orchestrator *workflow.Orchestrator) *Worker {
	return &Worker{
		workerID:     uuid.New().String(),
		queue:        queue,
		orchestrator: orchestrator,
	}
}

// ProcessNextJob handles exactly ONE workflow run
func (w *Worker) ProcessNextJob(ctx context.Context) {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Worker %s error popping from queue: %v", w.workerID, err)
		return
	}

	log.Printf("Worker %s picked up declaration %d (workflow %s)",
		w.workerID, job.DeclarationID, job.WorkflowID)

	// The worker loop must survive anything a run does.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %s recovered from panic in declaration %d run: %v",
				w.workerID, job.DeclarationID, r)
		}
	}()

	w.orchestrator.Process(ctx, *job)
}

// StartPool launches multiple concurrent worker loops
func (w *Worker) StartPool(ctx context.Context, concurrency int) {
	log.Printf("Starting workflow worker pool with %d concurrent workers...", concurrency)

	for i := 0; i < concurrency; i++ {
		go func(threadID int) {
			log.Printf("Worker thread %d (ID: %s) started", threadID, w.workerID)
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker thread %d (ID: %s) shutting down", threadID, w.workerID)
					return
				default:
					w.ProcessNextJob(ctx)
				}
			}
		}(i)
	}
}
