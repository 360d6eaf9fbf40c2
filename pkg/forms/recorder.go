package forms

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/studiobook/internal/logging"
	"github.com/mesh-intelligence/studiobook/pkg/form"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// submissionsPrefix is the KV key prefix for recorded submissions. Each form
// keeps its submissions as one list under submissionsPrefix + name.
const submissionsPrefix = "submissions/"

// Submission is one accepted form submission.
type Submission struct {
	ID          string      `json:"id"`
	Form        string      `json:"form"`
	Data        form.Values `json:"data"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// Recorder stores accepted submissions in a KV.
type Recorder struct {
	kv    types.KV
	now   func() time.Time
	newID func() (string, error)
	log   *logrus.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock sets the clock used to stamp submissions.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithRecorderIDs sets the submission ID generator.
func WithRecorderIDs(gen func() (string, error)) RecorderOption {
	return func(r *Recorder) { r.newID = gen }
}

// WithRecorderLogger sets the logger.
func WithRecorderLogger(l *logrus.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRecorder returns a recorder writing to kv.
func NewRecorder(kv types.KV, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		kv:    kv,
		now:   time.Now,
		newID: newUUIDv7,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SubmissionsKey returns the KV key holding the submissions of a form.
func SubmissionsKey(name string) string {
	return submissionsPrefix + name
}

// Record appends a submission of the named form and returns it. An
// unreadable stored list is replaced by a list holding only the new
// submission.
func (r *Recorder) Record(name string, data form.Values) (Submission, error) {
	id, err := r.newID()
	if err != nil {
		return Submission{}, fmt.Errorf("generating submission id: %w", err)
	}
	sub := Submission{
		ID:          id,
		Form:        name,
		Data:        data.Clone(),
		SubmittedAt: r.now().UTC(),
	}

	list, err := r.List(name)
	switch {
	case errors.Is(err, types.ErrCorruptValue):
		r.log.WithFields(logrus.Fields{
			"form": name,
			"key":  SubmissionsKey(name),
		}).WithError(err).Warn("submissions unreadable, starting a new list")
		list = nil
	case err != nil:
		return Submission{}, err
	}
	list = append(list, sub)
	if err := r.kv.Set(SubmissionsKey(name), list); err != nil {
		logging.LogError(r.log, "forms", "record", map[string]string{"form": name, "id": id}, err)
		return Submission{}, fmt.Errorf("recording %s submission: %w", name, err)
	}

	r.log.WithFields(logrus.Fields{
		"form": name,
		"id":   id,
	}).Debug("recorded submission")
	return sub, nil
}

// List returns the recorded submissions of the named form, oldest first.
func (r *Recorder) List(name string) ([]Submission, error) {
	var list []Submission
	if _, err := r.kv.Get(SubmissionsKey(name), &list); err != nil {
		return nil, fmt.Errorf("reading %s submissions: %w", name, err)
	}
	r.log.WithFields(logrus.Fields{
		"form":  name,
		"count": len(list),
	}).Debug("read submissions")
	return list, nil
}

// SubmitFunc returns a form submit function that records accepted data under
// the named form. The recorded submission is passed to done when it is not
// nil.
func (r *Recorder) SubmitFunc(name string, done func(Submission)) form.SubmitFunc {
	return func(data form.Values) error {
		sub, err := r.Record(name, data)
		if err != nil {
			return err
		}
		if done != nil {
			done(sub)
		}
		return nil
	}
}
