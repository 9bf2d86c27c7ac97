package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/topics"
)

// SessionRepo persists interview sessions and their interaction logs.
// It implements interview.Store.
type SessionRepo struct {
	db      *sql.DB
	dialect string
	locks   *keyedMutex
}

var _ interview.Store = (*SessionRepo)(nil)

var sessionColumns = []string{
	"id", "user_id", "record_id", "difficulty", "stage", "status", "end_reason",
	"time_budget", "remaining_time", "current_topic", "asked_topics", "probe_count",
	"last_question", "turn", "stats", "report", "created_at", "updated_at", "completed_at",
}

var logColumns = []string{"seq", "question", "answer", "response_time", "sub_topic", "created_at"}

func (r *SessionRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

// Create inserts a new session together with any log entries it carries.
func (r *SessionRepo) Create(ctx context.Context, s *interview.Session) error {
	asked, stats, report, err := encodeSession(s)
	if err != nil {
		return err
	}
	q, args := r.builder().Insert(tableSessions).
		Columns(sessionColumns...).
		Values(
			s.ID, s.UserID, s.RecordID, string(s.Difficulty), string(s.Stage), string(s.Status), string(s.EndReason),
			s.TimeBudget, s.RemainingTime, string(s.CurrentTopic), asked, s.ProbeCount,
			s.LastQuestion, s.Turn, stats, report, s.CreatedAt.UTC(), s.UpdatedAt.UTC(), nullTime(s.CompletedAt),
		).Query()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create session %s: already exists", s.ID)
			}
			return fmt.Errorf("create session: %w", err)
		}
		for i := range s.Log {
			e := s.Log[i]
			e.Seq = i + 1
			if err := r.insertLog(ctx, tx, s.ID, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the session with its log in sequence order and any
// attached report.
func (r *SessionRepo) Load(ctx context.Context, id string) (*interview.Session, error) {
	var s *interview.Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		b := r.builder()
		q, args := b.Select(sessionColumns...).
			From(b.Table(tableSessions)).
			Where(entsql.EQ("id", id)).
			Query()
		var err error
		s, err = scanSession(tx.QueryRowContext(ctx, q, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return interview.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		s.Log, err = r.loadLog(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) loadLog(ctx context.Context, tx *sql.Tx, id string) ([]interview.LogEntry, error) {
	b := r.builder()
	q, args := b.Select(logColumns...).
		From(b.Table(tableLogs)).
		Where(entsql.EQ("session_id", id)).
		OrderBy(entsql.Asc("seq")).
		Query()
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("load log: %w", err)
	}
	defer rows.Close()

	log := []interview.LogEntry{}
	for rows.Next() {
		var (
			e     interview.LogEntry
			topic string
		)
		if err := rows.Scan(&e.Seq, &e.Question, &e.Answer, &e.ResponseTime, &topic, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Topic = topics.Topic(topic)
		log = append(log, e)
	}
	return log, rows.Err()
}

// AppendLogEntry appends e with the next sequence number and returns it.
func (r *SessionRepo) AppendLogEntry(ctx context.Context, id string, e interview.LogEntry) (interview.LogEntry, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if ok, err := r.exists(ctx, tx, id); err != nil {
			return err
		} else if !ok {
			return interview.ErrNotFound
		}
		seq, err := r.nextSeq(ctx, tx, id)
		if err != nil {
			return err
		}
		e.Seq = seq
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		return r.insertLog(ctx, tx, id, e)
	})
	if err != nil {
		return interview.LogEntry{}, err
	}
	return e, nil
}

// SaveTurn writes the snapshot and appends entry in one transaction,
// provided the stored turn still equals prevTurn.
func (r *SessionRepo) SaveTurn(ctx context.Context, prevTurn int, s *interview.Session, entry *interview.LogEntry) error {
	unlock := r.locks.Lock(s.ID)
	defer unlock()

	asked, stats, report, err := encodeSession(s)
	if err != nil {
		return err
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		q, args := r.builder().Update(tableSessions).
			Set("stage", string(s.Stage)).
			Set("status", string(s.Status)).
			Set("end_reason", string(s.EndReason)).
			Set("remaining_time", s.RemainingTime).
			Set("current_topic", string(s.CurrentTopic)).
			Set("asked_topics", asked).
			Set("probe_count", s.ProbeCount).
			Set("last_question", s.LastQuestion).
			Set("turn", prevTurn+1).
			Set("stats", stats).
			Set("report", report).
			Set("updated_at", s.UpdatedAt.UTC()).
			Set("completed_at", nullTime(s.CompletedAt)).
			Where(entsql.And(entsql.EQ("id", s.ID), entsql.EQ("turn", prevTurn))).
			Query()
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if n == 0 {
			ok, err := r.exists(ctx, tx, s.ID)
			if err != nil {
				return err
			}
			if !ok {
				return interview.ErrNotFound
			}
			return interview.ErrConflict
		}

		if entry == nil {
			return nil
		}
		seq, err := r.nextSeq(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		entry.Seq = seq
		return r.insertLog(ctx, tx, s.ID, *entry)
	})
}

// UpdateStatus sets the status and summary stats. A terminal status also
// moves the stage to WRAP_UP, and the completion time is recorded the first
// time one is written.
func (r *SessionRepo) UpdateStatus(ctx context.Context, id string, status interview.Status, stats interview.SummaryStats) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		b := r.builder()
		q, args := b.Select("turn", "end_reason", "completed_at").
			From(b.Table(tableSessions)).
			Where(entsql.EQ("id", id)).
			Query()
		var (
			turn      int
			reason    string
			completed sql.NullTime
		)
		err := tx.QueryRowContext(ctx, q, args...).Scan(&turn, &reason, &completed)
		if errors.Is(err, sql.ErrNoRows) {
			return interview.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read session: %w", err)
		}

		now := time.Now().UTC()
		upd := b.Update(tableSessions).
			Set("status", string(status)).
			Set("stats", string(statsJSON)).
			Set("turn", turn+1).
			Set("updated_at", now)
		if status.Terminal() {
			upd.Set("stage", string(interview.StageWrapUp))
			if !completed.Valid {
				upd.Set("completed_at", now)
			}
		}
		if status == interview.StatusAbandoned && reason == "" {
			upd.Set("end_reason", string(interview.ReasonAbandoned))
		}
		q, args = upd.Where(entsql.EQ("id", id)).Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
}

// AttachReport stores the report unless one is already attached. In the
// same transaction the session becomes COMPLETED with the report's stats,
// so a stored report always implies a completed session.
func (r *SessionRepo) AttachReport(ctx context.Context, id string, rep *interview.Report) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	statsJSON, err := json.Marshal(rep.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		b := r.builder()
		q, args := b.Select("report", "turn", "completed_at").
			From(b.Table(tableSessions)).
			Where(entsql.EQ("id", id)).
			Query()
		var (
			existing  []byte
			turn      int
			completed sql.NullTime
		)
		err := tx.QueryRowContext(ctx, q, args...).Scan(&existing, &turn, &completed)
		if errors.Is(err, sql.ErrNoRows) {
			return interview.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		if len(existing) > 0 && string(existing) != "null" {
			return interview.ErrReportExists
		}

		now := time.Now().UTC()
		upd := b.Update(tableSessions).
			Set("report", string(data)).
			Set("status", string(interview.StatusCompleted)).
			Set("stage", string(interview.StageWrapUp)).
			Set("stats", string(statsJSON)).
			Set("turn", turn+1).
			Set("updated_at", now)
		if !completed.Valid {
			upd.Set("completed_at", now)
		}
		q, args = upd.Where(entsql.EQ("id", id)).Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("attach report: %w", err)
		}
		return nil
	})
}

// List returns sessions newest first, without their logs.
func (r *SessionRepo) List(ctx context.Context, opts ListOpts) ([]*interview.Session, error) {
	b := r.builder()
	sel := b.Select(sessionColumns...).
		From(b.Table(tableSessions)).
		OrderBy(entsql.Desc("created_at"))
	if opts.UserID != "" {
		sel.Where(entsql.EQ("user_id", opts.UserID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*interview.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepo) exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	b := r.builder()
	q, args := b.Select(entsql.Count("*")).
		From(b.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
		Query()
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return n > 0, nil
}

func (r *SessionRepo) nextSeq(ctx context.Context, tx *sql.Tx, id string) (int, error) {
	b := r.builder()
	q, args := b.Select("COALESCE(MAX(seq), 0)").
		From(b.Table(tableLogs)).
		Where(entsql.EQ("session_id", id)).
		Query()
	var last int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return last + 1, nil
}

func (r *SessionRepo) insertLog(ctx context.Context, tx *sql.Tx, id string, e interview.LogEntry) error {
	q, args := r.builder().Insert(tableLogs).
		Columns("session_id", "seq", "question", "answer", "response_time", "sub_topic", "created_at").
		Values(id, e.Seq, e.Question, e.Answer, e.ResponseTime, string(e.Topic), e.CreatedAt.UTC()).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append log entry %d: %w", e.Seq, interview.ErrConflict)
		}
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

func encodeSession(s *interview.Session) (asked string, stats, report any, err error) {
	askedTopics := s.AskedTopics
	if askedTopics == nil {
		askedTopics = []topics.Topic{}
	}
	b, err := json.Marshal(askedTopics)
	if err != nil {
		return "", nil, nil, fmt.Errorf("encode asked topics: %w", err)
	}
	stats, err = nullJSON(s.Stats)
	if err != nil {
		return "", nil, nil, fmt.Errorf("encode stats: %w", err)
	}
	report, err = nullJSON(s.Report)
	if err != nil {
		return "", nil, nil, fmt.Errorf("encode report: %w", err)
	}
	return string(b), stats, report, nil
}

// nullJSON encodes v, mapping a nil pointer to SQL NULL.
func nullJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func scanSession(sc rowScanner) (*interview.Session, error) {
	var (
		s                                      interview.Session
		difficulty, stage, status, reason, cur string
		asked, stats, report                   []byte
		completed                              sql.NullTime
	)
	err := sc.Scan(
		&s.ID, &s.UserID, &s.RecordID, &difficulty, &stage, &status, &reason,
		&s.TimeBudget, &s.RemainingTime, &cur, &asked, &s.ProbeCount,
		&s.LastQuestion, &s.Turn, &stats, &report, &s.CreatedAt, &s.UpdatedAt, &completed,
	)
	if err != nil {
		return nil, err
	}
	s.Difficulty = interview.Difficulty(difficulty)
	s.Stage = interview.Stage(stage)
	s.Status = interview.Status(status)
	s.EndReason = interview.EndReason(reason)
	s.CurrentTopic = topics.Topic(cur)
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}

	s.AskedTopics = []topics.Topic{}
	if len(asked) > 0 {
		if err := json.Unmarshal(asked, &s.AskedTopics); err != nil {
			return nil, fmt.Errorf("decode asked topics: %w", err)
		}
	}
	if len(stats) > 0 {
		s.Stats = &interview.SummaryStats{}
		if err := json.Unmarshal(stats, s.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	if len(report) > 0 {
		s.Report = &interview.Report{}
		if err := json.Unmarshal(report, s.Report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
	}
	return &s, nil
}
