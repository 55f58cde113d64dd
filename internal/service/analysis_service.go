package service

import (
	"context"
	"log"
	"sync"
	"time"

	"literacylead/internal/models"
	"literacylead/internal/roster"
)

// Analyzer produces a full report from the complete roster. Two
// implementations exist: the deterministic local rule engine and the remote
// Gemini client.
type Analyzer interface {
	Analyze(ctx context.Context, roster []models.StudentRecord, previous *models.LiteracyAnalysisReport) (*models.LiteracyAnalysisReport, error)
}

// AnalysisStatus is what the report endpoint exposes alongside the report.
type AnalysisStatus struct {
	Loading   bool   `json:"loading"`
	LastError string `json:"lastError,omitempty"`
}

// AnalysisService runs analysis over the roster and keeps exactly one
// current report. Runs are asynchronous; each is tagged with a sequence
// number taken at trigger time, and a completion is applied only if its tag
// is still the latest issued. An out-of-order completion can therefore never
// clobber a newer report with an older roster's result. Failures keep the
// previous report and surface an error string instead.
type AnalysisService struct {
	store    *roster.Store
	analyzer Analyzer
	email    *EmailService
	notifier *NotifyService
	timeout  time.Duration

	mu      sync.Mutex
	seq     uint64
	running int
	report  *models.LiteracyAnalysisReport
	lastErr string
}

// NewAnalysisService creates the analysis coordinator. email and notifier
// may be nil or disabled.
func NewAnalysisService(store *roster.Store, analyzer Analyzer, email *EmailService, notifier *NotifyService) *AnalysisService {
	return &AnalysisService{
		store:    store,
		analyzer: analyzer,
		email:    email,
		notifier: notifier,
		timeout:  2 * time.Minute,
	}
}

// Trigger snapshots the roster and starts an analysis run in the
// background, returning the run's sequence number. The caller gets no
// completion signal; it polls Snapshot.
func (s *AnalysisService) Trigger() uint64 {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.running++
	previous := s.report
	s.mu.Unlock()

	snapshot := s.store.List()
	go s.run(seq, snapshot, previous)
	return seq
}

// Snapshot returns the current report (nil when none has succeeded yet) and
// the loading/error status. The error string is the last failure since the
// last successful run.
func (s *AnalysisService) Snapshot() (*models.LiteracyAnalysisReport, AnalysisStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report, AnalysisStatus{
		Loading:   s.running > 0,
		LastError: s.lastErr,
	}
}

func (s *AnalysisService) run(seq uint64, snapshot []models.StudentRecord, previous *models.LiteracyAnalysisReport) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.analyzer.Analyze(ctx, snapshot, previous)

	s.mu.Lock()
	s.running--
	if err != nil {
		// Previous report stays; the client is told why this run failed.
		s.lastErr = err.Error()
		s.mu.Unlock()
		log.Printf("Analysis run %d failed: %v", seq, err)
		return
	}
	if seq != s.seq {
		// A newer run was issued while this one was in flight. Its result
		// describes a stale roster, so it is discarded.
		s.mu.Unlock()
		log.Printf("Analysis run %d discarded: superseded by run %d", seq, s.seq)
		return
	}
	s.report = report
	s.lastErr = ""
	s.mu.Unlock()

	log.Printf("Analysis run %d applied: %d tiered, %d missing data",
		seq, report.ClassHealth.Total(), len(report.MissingDataStudents))

	s.deliver(report)
}

// deliver fans the fresh report out to the optional channels. Delivery
// failures are logged, never surfaced; the report is already applied.
func (s *AnalysisService) deliver(report *models.LiteracyAnalysisReport) {
	if s.email != nil && s.email.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.email.SendReportSummary(ctx, report); err != nil {
			log.Printf("Failed to email report summary: %v", err)
		}
	}
	if s.notifier != nil && s.notifier.IsEnabled() {
		if err := s.notifier.AnalysisComplete(report); err != nil {
			log.Printf("Failed to send analysis notification: %v", err)
		}
	}
}
