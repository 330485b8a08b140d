package commands

import (
	"fmt"
	"strings"

	"github.com/balkashynov/zen/internal/models"
)

// shortIDLen is how much of an id the list commands print
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveID finds the one id equal to ref or starting with it
func resolveID(kind, ref string, ids []string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}

	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q not found", kind, ref)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
}

func resolveSession(sessions []models.Session, ref string) (models.Session, error) {
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	id, err := resolveID("session", ref, ids)
	if err != nil {
		return models.Session{}, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Session{}, fmt.Errorf("session %q not found", ref)
}

func resolveTask(tasks []models.Task, ref string) (models.Task, error) {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	id, err := resolveID("task", ref, ids)
	if err != nil {
		return models.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("task %q not found", ref)
}
