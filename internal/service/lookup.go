package service

import (
	"context"
	"fmt"
	"strings"

	"domsync/internal/identifier"
	"domsync/internal/model"
)

// lookup finds the one object whose identifier field holds the tagged entity id.
func (s *entityService) lookup(ctx context.Context, op, entityID string) (string, error) {
	if entityID == "" {
		return "", fail(op, "", ErrIDRequired, nil)
	}
	tagged, err := s.codec.Format(model.Identifier{Value: entityID}, identifier.RoleEntity)
	if err != nil {
		return "", fail(op, "", ErrInvalidEntity, err)
	}

	pids, err := s.repo.FindObjectsByIdentifier(ctx, tagged)
	if err != nil {
		return "", fail(op, "", classify(err, ErrCommunication), fmt.Errorf("find %s: %w", tagged, err))
	}
	switch len(pids) {
	case 0:
		return "", fail(op, "", ErrNotFound, fmt.Errorf("no object holds %s", tagged))
	case 1:
		return pids[0], nil
	default:
		return "", fail(op, "", ErrAmbiguousIdentifier, fmt.Errorf("%s is held by %s", tagged, strings.Join(pids, ", ")))
	}
}
