package jobqueue

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue        *Queue
	expiryTicker *time.Ticker
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 5
		if raw := os.Getenv("JOB_QUEUE_WORKERS"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				workerCount = n
			}
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Periodically enqueue a subscription expiry sweep
	m.expiryTicker = time.NewTicker(expirySweepInterval())
	m.wg.Add(1)
	go m.expiryWorker()
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks")
	close(m.stopCh)
	m.running = false

	if m.expiryTicker != nil {
		m.expiryTicker.Stop()
	}

	m.wg.Wait()
	m.queue.Stop()
	log.Info("[JobQueue Manager] Stopped")
}

// Enqueue submits a job by type name. Unknown type names are rejected.
func (m *Manager) Enqueue(jobType string, payload map[string]interface{}) error {
	var typ JobType
	switch JobType(jobType) {
	case JobTypeNotification:
		typ = JobTypeNotification
	case JobTypeMediaStatus:
		typ = JobTypeMediaStatus
	case JobTypeMediaArchive:
		typ = JobTypeMediaArchive
	case JobTypeSubscriptionExpiry:
		typ = JobTypeSubscriptionExpiry
	default:
		return ErrUnknownJobType
	}

	_, err := m.queue.EnqueueJob(typ, payload)
	return err
}

// expiryWorker enqueues periodic subscription expiry sweeps
func (m *Manager) expiryWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.stopCh:
			return
		case <-m.expiryTicker.C:
			if _, err := m.queue.EnqueueJob(JobTypeSubscriptionExpiry, map[string]interface{}{}); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue expiry sweep: %v", err)
			}
		}
	}
}

func expirySweepInterval() time.Duration {
	if raw := os.Getenv("SUBSCRIPTION_SWEEP_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return 15 * time.Minute
}
