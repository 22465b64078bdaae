package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"almanac/internal/seasonal"
	"almanac/pkg/types"
)

// WorkerPool manages parallel evaluation of sweep offsets
type WorkerPool struct {
	workerCount int
	jobQueue    chan SweepJob
	resultQueue chan SweepResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// SweepJob evaluates every threshold for a single calendar offset
type SweepJob struct {
	Offset        int
	Bars          []types.Bar
	Period        seasonal.Period
	Years         []int
	LookbackYears int
}

// SweepResult carries the per-threshold evaluations for one offset
type SweepResult struct {
	Offset   int
	Combos   []ComboEval
	Duration time.Duration
	Err      error
}

// ComboEval is the outcome of simulating one offset/threshold combination
type ComboEval struct {
	Threshold int
	HasData   bool
	AvgProfit float64
	YieldBps  float64
}

// NewWorkerPool creates a new worker pool for parallel sweep evaluation
func NewWorkerPool(ctx context.Context, workerCount, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan SweepJob, jobBufferSize),
		resultQueue: make(chan SweepResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// Submit submits a sweep job to the pool
func (wp *WorkerPool) Submit(job SweepJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// Results returns the result channel for collecting completed jobs
func (wp *WorkerPool) Results() <-chan SweepResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob simulates every threshold at the job's offset
func (wp *WorkerPool) processJob(job SweepJob) SweepResult {
	startTime := time.Now()

	result := SweepResult{Offset: job.Offset}

	rows, err := seasonal.GenerateRows(job.Bars, job.Period, job.Offset, job.LookbackYears)
	if err != nil {
		result.Err = err
		return result
	}

	for threshold := sweepThresholdMin; threshold <= sweepThresholdMax; threshold += sweepThresholdStep {
		runs, err := seasonal.DetectRuns(rows, sweepMinRunLength, float64(threshold))
		if err != nil {
			result.Err = err
			return result
		}

		yearly := seasonal.SimulateAllYears(rows, runs, job.Years, job.Period)

		sumProfit, sumDays := 0.0, 0
		for _, year := range job.Years {
			yr := yearly[year]
			sumProfit += yr.TotalProfitPct
			sumDays += yr.TotalDaysHeld
		}

		combo := ComboEval{Threshold: threshold}
		if len(job.Years) > 0 {
			combo.HasData = true
			combo.AvgProfit = sumProfit / float64(len(job.Years))
			avgDays := float64(sumDays) / float64(len(job.Years))
			if avgDays > 0 {
				combo.YieldBps = combo.AvgProfit / avgDays * 100
			}
		}
		result.Combos = append(result.Combos, combo)
	}

	result.Duration = time.Since(startTime)
	return result
}
