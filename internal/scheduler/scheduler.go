// Package scheduler runs the periodic back-office jobs, currently the daily
// inventory digest.
package scheduler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"valora/server/internal/database"
	"valora/server/internal/models"
	"valora/server/internal/notify"
)

// Scheduler triggers the inventory digest once a day at the configured hour.
type Scheduler struct {
	projects   *database.ProjectRepository
	notifier   *notify.Service
	logger     *logrus.Logger
	digestHour int
	stopChan   chan struct{}
	wg         sync.WaitGroup
	jobMutex   sync.Mutex
}

// NewScheduler creates a new scheduler.
func NewScheduler(projects *database.ProjectRepository, notifier *notify.Service, digestHour int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		projects:   projects,
		notifier:   notifier,
		logger:     logger,
		digestHour: digestHour,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			if t.Hour() == s.digestHour && t.Minute() == 0 {
				s.RunDigest()
			}
		}
	}
}

// RunDigest aggregates every project's inventory and sends one digest
// message. Safe to call manually; concurrent runs are serialized.
func (s *Scheduler) RunDigest() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.Info("Starting inventory digest job")

	projects, err := s.projects.FindAll()
	if err != nil {
		s.logger.WithError(err).Error("Digest job failed to list projects")
		return
	}

	var stats []models.ProjectStats
	names := make(map[string]string, len(projects))
	for _, project := range projects {
		projectStats, err := s.projects.Stats(project.ID)
		if err != nil {
			s.logger.WithError(err).WithField("project_id", project.ID).Error("Digest job failed to aggregate project")
			continue
		}
		stats = append(stats, projectStats)
		names[project.ID] = project.Name
	}

	if err := s.notifier.NotifyInventoryDigest(stats, names); err != nil {
		s.logger.WithError(err).Error("Digest job failed to send notification")
		return
	}

	s.logger.WithField("projects", len(stats)).Info("Inventory digest job completed")
}
