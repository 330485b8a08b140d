package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	Successf(p, "Meditation session %s", "scheduled")
	Errorf(p, "Failed to add task")

	assert.Equal(t, "✅ Meditation session scheduled\n❌ Failed to add task\n", buf.String())
}

func TestQueueDrain(t *testing.T) {
	var q Queue
	Infof(&q, "one")
	Errorf(&q, "two")

	got := q.Drain()
	assert.Equal(t, []Notification{{Level: Info, Message: "one"}, {Level: Error, Message: "two"}}, got)
	assert.Empty(t, q.Drain())
}

func TestLoggedForwards(t *testing.T) {
	var q Queue
	Successf(Logged{Next: &q}, "ok")
	assert.Len(t, q.Drain(), 1)
}
