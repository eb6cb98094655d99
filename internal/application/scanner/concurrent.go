package scanner

// concurrent.go — worker pool para clasificación paralela de snapshots.
//
// La clasificación de un instrumento nunca bloquea la de otro: los workers
// consumen del workCh de forma independiente. La ejecución de oportunidades
// es un paso posterior del controller, fuera de este pool.

import (
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// classifyConcurrent evalúa todos los snapshots en paralelo.
// Si workers <= 0 usa runtime.NumCPU() × 2.
func classifyConcurrent(detector *Detector, markets []domain.Market, now time.Time, workers int) []domain.Classification {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	if workers > len(markets) {
		workers = len(markets)
	}
	if workers == 0 {
		return nil
	}

	workCh := make(chan domain.Market, len(markets))
	resultCh := make(chan domain.Classification, len(markets))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range workCh {
				resultCh <- detector.Classify(m, now)
			}
		}()
	}

	for _, m := range markets {
		workCh <- m
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]domain.Classification, 0, len(markets))
	for c := range resultCh {
		results = append(results, c)
	}
	return results
}
