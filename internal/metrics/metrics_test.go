package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery_CountsErrors(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.op"))

	var err error
	ObserveQuery("test.op", time.Now(), &err)
	assert.Equal(t, before, testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.op")))

	err = errors.New("boom")
	ObserveQuery("test.op", time.Now(), &err)
	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.op")))
}

func TestObserveQuery_NilErrPointer(t *testing.T) {
	assert.NotPanics(t, func() {
		ObserveQuery("test.nil", time.Now(), nil)
	})
}

func TestObserveQuery_SkipsExpectedErrors(t *testing.T) {
	notFound := errors.New("not found")
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.expected"))

	err := fmt.Errorf("lookup: %w", notFound)
	ObserveQuery("test.expected", time.Now(), &err, notFound)
	assert.Equal(t, before, testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.expected")))

	err = errors.New("connection reset")
	ObserveQuery("test.expected", time.Now(), &err, notFound)
	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("test.expected")))
}
