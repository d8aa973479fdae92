package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"mrstrict/internal/domain"
	"mrstrict/internal/metrics"
	"mrstrict/internal/port"
	"mrstrict/internal/report"
	"mrstrict/internal/scoring"
)

// Notification text sent with the marks report.
const (
	NotificationSubject = "Assignment Marks - MR.Strict"
	NotificationBody    = "Hi Teacher,\n\nPlease find attached the evaluated assignment marks.\n\nRegards,\nMR.Strict"
)

// EvaluateInput is the DTO for a batch evaluation.
type EvaluateInput struct {
	OwnerID     uuid.UUID
	Reference   domain.SourceDocument
	Candidates  []domain.SourceDocument
	NotifyEmail string
}

// EvaluationConfig holds the service limits and archive settings.
type EvaluationConfig struct {
	Concurrency    int
	MaxFileBytes   int64
	MaxCandidates  int
	Bucket         string
	ArchiveReports bool
	PresignExpiry  int64
}

// EvaluationService defines the batch evaluation contract.
type EvaluationService interface {
	Evaluate(ctx context.Context, input EvaluateInput) (*domain.Evaluation, error)
	Notify(ctx context.Context, ownerID, id uuid.UUID, recipient string) (*domain.Evaluation, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error)
	Export(ctx context.Context, ownerID, id uuid.UUID, format report.Format, w io.Writer) (*domain.Evaluation, error)
	GetReportURL(ctx context.Context, ownerID, id uuid.UUID) (string, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type evaluationService struct {
	repo      port.EvaluationRepository
	extractor port.TextExtractor
	storage   port.ObjectStorage
	notifier  port.Notifier
	metrics   *metrics.Metrics
	cfg       EvaluationConfig
	now       func() time.Time
}

// NewEvaluationService creates a new EvaluationService implementation.
// storage, notifier and m may be nil; reports are then not archived, Notify
// fails with ErrNotificationNotConfigured, and nothing is measured.
func NewEvaluationService(
	repo port.EvaluationRepository,
	extractor port.TextExtractor,
	storage port.ObjectStorage,
	notifier port.Notifier,
	m *metrics.Metrics,
	cfg EvaluationConfig,
) EvaluationService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &evaluationService{
		repo:      repo,
		extractor: extractor,
		storage:   storage,
		notifier:  notifier,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// candidateOutcome is the per-candidate slot filled by a scoring goroutine.
// Exactly one of result and skipped is set.
type candidateOutcome struct {
	result  *domain.ComparisonResult
	skipped *domain.SkippedCandidate
}

func (s *evaluationService) Evaluate(ctx context.Context, input EvaluateInput) (*domain.Evaluation, error) {
	if input.Reference.Name == "" || len(input.Reference.Data) == 0 {
		return nil, domain.ErrMissingReference
	}
	if len(input.Candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}
	if s.cfg.MaxCandidates > 0 && len(input.Candidates) > s.cfg.MaxCandidates {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", domain.ErrTooManyCandidates, len(input.Candidates), s.cfg.MaxCandidates)
	}
	if s.tooLarge(input.Reference) {
		return nil, domain.ErrFileTooLarge
	}
	recipient := ""
	if input.NotifyEmail != "" {
		addr, err := parseRecipient(input.NotifyEmail)
		if err != nil {
			return nil, err
		}
		if s.notifier == nil {
			return nil, domain.ErrNotificationNotConfigured
		}
		recipient = addr
	}

	ref := s.extractor.Extract(ctx, input.Reference)
	if !ref.OK() {
		log.Warn().
			Str("reference", input.Reference.Name).
			Str("status", string(ref.Status)).
			Str("reason", ref.Reason()).
			Msg("reference extraction failed")
		return nil, fmt.Errorf("%w: %s", domain.ErrReferenceExtraction, ref.Reason())
	}

	outcomes := make([]candidateOutcome, len(input.Candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, doc := range input.Candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.scoreCandidate(gctx, ref.Text, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	eval := &domain.Evaluation{
		ID:             uuid.New(),
		OwnerID:        input.OwnerID,
		ReferenceName:  input.Reference.Name,
		CandidateCount: len(input.Candidates),
		CreatedAt:      now,
		UpdatedAt:      now,
		Results:        []domain.ComparisonResult{},
		Skipped:        []domain.SkippedCandidate{},
	}
	for _, o := range outcomes {
		if o.result != nil {
			o.result.EvaluationID = eval.ID
			eval.Results = append(eval.Results, *o.result)
			continue
		}
		o.skipped.EvaluationID = eval.ID
		eval.Skipped = append(eval.Skipped, *o.skipped)
	}
	slices.SortStableFunc(eval.Results, func(a, b domain.ComparisonResult) int {
		return strings.Compare(a.CandidateID, b.CandidateID)
	})
	slices.SortStableFunc(eval.Skipped, func(a, b domain.SkippedCandidate) int {
		return strings.Compare(a.CandidateID, b.CandidateID)
	})
	eval.ScoredCount = len(eval.Results)
	eval.SkippedCount = len(eval.Skipped)
	eval.Status = domain.EvaluationStatusCompleted
	if eval.ScoredCount == 0 {
		eval.Status = domain.EvaluationStatusNoValidInput
	}

	if err := s.repo.Create(ctx, eval); err != nil {
		return nil, fmt.Errorf("evaluation.Evaluate: %w", err)
	}
	s.metrics.ObserveEvaluation(string(eval.Status))

	log.Info().
		Str("evaluation_id", eval.ID.String()).
		Str("reference", eval.ReferenceName).
		Int("scored", eval.ScoredCount).
		Int("skipped", eval.SkippedCount).
		Msg("evaluation completed")

	if eval.ScoredCount == 0 {
		return eval, domain.ErrNoValidCandidates
	}

	s.archiveReport(ctx, eval)

	if recipient != "" {
		if err := s.send(ctx, eval, recipient); err != nil {
			return eval, err
		}
	}
	return eval, nil
}

func (s *evaluationService) scoreCandidate(ctx context.Context, reference string, doc domain.SourceDocument) candidateOutcome {
	if s.tooLarge(doc) {
		return s.skip(doc.Name, domain.ExtractionFailed, domain.ErrFileTooLarge.Error())
	}
	ext := s.extractor.Extract(ctx, doc)
	if !ext.OK() {
		return s.skip(doc.Name, ext.Status, ext.Reason())
	}

	r := scoring.Score(reference, ext.Text)
	s.metrics.ObserveScored(r.Percent)
	return candidateOutcome{result: &domain.ComparisonResult{
		CandidateID:  doc.Name,
		Grade:        r.Grade,
		ScorePercent: r.Percent,
		LineScore:    r.LineScore,
		WordScore:    r.WordScore,
	}}
}

func (s *evaluationService) skip(name string, status domain.ExtractionStatus, reason string) candidateOutcome {
	log.Debug().Str("candidate", name).Str("status", string(status)).Str("reason", reason).Msg("candidate skipped")
	s.metrics.ObserveSkipped(string(status))
	return candidateOutcome{skipped: &domain.SkippedCandidate{
		CandidateID: name,
		Status:      status,
		Reason:      reason,
	}}
}

func (s *evaluationService) tooLarge(doc domain.SourceDocument) bool {
	return s.cfg.MaxFileBytes > 0 && int64(len(doc.Data)) > s.cfg.MaxFileBytes
}

// archiveReport uploads the CSV report. Failures are logged and leave
// ReportKey empty.
func (s *evaluationService) archiveReport(ctx context.Context, eval *domain.Evaluation) {
	if s.storage == nil || !s.cfg.ArchiveReports {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, eval.Results); err != nil {
		log.Error().Err(err).Str("evaluation_id", eval.ID.String()).Msg("rendering report for archive")
		return
	}

	key := reportKey(eval.ID)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        &buf,
		ContentType: report.FormatCSV.ContentType(),
		Size:        int64(buf.Len()),
	}); err != nil {
		log.Error().Err(err).Str("evaluation_id", eval.ID.String()).Msg("archiving report")
		return
	}
	if err := s.repo.UpdateReportKey(ctx, eval.ID, key); err != nil {
		log.Error().Err(err).Str("evaluation_id", eval.ID.String()).Msg("recording report key")
		return
	}
	eval.ReportKey = key
}

func reportKey(id uuid.UUID) string {
	return path.Join("evaluations", id.String(), report.DefaultCSVName)
}

func (s *evaluationService) Notify(ctx context.Context, ownerID, id uuid.UUID, recipient string) (*domain.Evaluation, error) {
	addr, err := parseRecipient(recipient)
	if err != nil {
		return nil, err
	}
	if s.notifier == nil {
		return nil, domain.ErrNotificationNotConfigured
	}

	eval, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("evaluation.Notify: %w", err)
	}
	if len(eval.Results) == 0 {
		return eval, domain.ErrNoValidCandidates
	}

	if err := s.send(ctx, eval, addr); err != nil {
		return eval, err
	}
	return eval, nil
}

// send mails the CSV report to recipient and records the delivery.
func (s *evaluationService) send(ctx context.Context, eval *domain.Evaluation, recipient string) error {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, eval.Results); err != nil {
		return fmt.Errorf("evaluation.send: rendering report: %w", err)
	}

	err := s.notifier.Send(ctx, domain.Message{
		To:      recipient,
		Subject: NotificationSubject,
		Body:    NotificationBody,
		Attachment: &domain.Attachment{
			Filename:    report.DefaultCSVName,
			ContentType: report.FormatCSV.ContentType(),
			Data:        buf.Bytes(),
		},
	})
	s.metrics.ObserveNotification(err)
	if err != nil {
		log.Error().Err(err).Str("evaluation_id", eval.ID.String()).Msg("marks delivery failed")
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	at := s.now().UTC()
	if err := s.repo.MarkNotified(ctx, eval.ID, recipient, at); err != nil {
		log.Error().Err(err).Str("evaluation_id", eval.ID.String()).Msg("recording delivery")
	}
	eval.NotifiedTo = recipient
	eval.NotifiedAt = &at

	log.Info().Str("evaluation_id", eval.ID.String()).Msg("marks delivered")
	return nil
}

func parseRecipient(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, raw)
	}
	return addr.Address, nil
}

func (s *evaluationService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Evaluation, error) {
	eval, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("evaluation.GetByID: %w", err)
	}
	return eval, nil
}

func (s *evaluationService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Evaluation, int, error) {
	evals, total, err := s.repo.ListByOwner(ctx, ownerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("evaluation.List: %w", err)
	}
	return evals, total, nil
}

func (s *evaluationService) Export(ctx context.Context, ownerID, id uuid.UUID, format report.Format, w io.Writer) (*domain.Evaluation, error) {
	eval, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("evaluation.Export: %w", err)
	}

	switch format {
	case report.FormatCSV:
		err = report.WriteCSV(w, eval.Results)
	case report.FormatXLSX:
		err = report.WriteXLSX(w, eval.Results)
	default:
		return nil, domain.ErrUnsupportedExportFormat
	}
	if err != nil {
		return nil, fmt.Errorf("evaluation.Export: %w", err)
	}
	return eval, nil
}

func (s *evaluationService) GetReportURL(ctx context.Context, ownerID, id uuid.UUID) (string, error) {
	eval, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return "", fmt.Errorf("evaluation.GetReportURL: %w", err)
	}
	if eval.ReportKey == "" || s.storage == nil {
		return "", domain.ErrNotFound
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, eval.ReportKey, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("evaluation.GetReportURL: %w", err)
	}
	return url, nil
}

func (s *evaluationService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	eval, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("evaluation.Delete: %w", err)
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("evaluation.Delete: %w", err)
	}

	if eval.ReportKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, s.cfg.Bucket, eval.ReportKey); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("key", eval.ReportKey).Msg("deleting archived report")
		}
	}
	return nil
}
