package main

import (
	"context"
	"sync"
	"time"

	"github.com/l1jgo/navgrid/internal/persist"
	"go.uber.org/zap"
)

// geometryJournal writes reconfigures to the database off the tick
// goroutine. Record never blocks; entries are dropped when the queue is full.
type geometryJournal struct {
	repo  *persist.GeometryLogRepo
	queue chan persist.GeometryEntry
	wg    sync.WaitGroup
	log   *zap.Logger
}

func newGeometryJournal(repo *persist.GeometryLogRepo, log *zap.Logger) *geometryJournal {
	j := &geometryJournal{
		repo:  repo,
		queue: make(chan persist.GeometryEntry, 64),
		log:   log,
	}
	j.wg.Add(1)
	go j.loop()
	return j
}

func (j *geometryJournal) Record(e persist.GeometryEntry) {
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now()
	}
	select {
	case j.queue <- e:
	default:
		j.log.Warn("geometry journal full, entry dropped")
	}
}

// Close flushes queued entries and stops the writer.
func (j *geometryJournal) Close() {
	close(j.queue)
	j.wg.Wait()
}

func (j *geometryJournal) loop() {
	defer j.wg.Done()
	for e := range j.queue {
		batch := []persist.GeometryEntry{e}
	drain:
		for {
			select {
			case next, ok := <-j.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := j.repo.Write(ctx, batch); err != nil {
			j.log.Error("geometry journal write", zap.Error(err), zap.Int("entries", len(batch)))
		}
		cancel()
	}
}
