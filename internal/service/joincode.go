package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aidar/taskmanager/internal/domain"
)

// DefaultJoinCodeLength is the length of generated join codes.
const DefaultJoinCodeLength = 6

// JoinCodeGenerator draws random lowercase hex codes until one is free.
type JoinCodeGenerator struct {
	length      int
	maxAttempts int // 0 means draw until a free code is found
	draw        func() string
}

// NewJoinCodeGenerator creates a generator backed by random UUIDs.
// length is capped at 32, the number of hex digits in a UUID.
func NewJoinCodeGenerator(length, maxAttempts int) *JoinCodeGenerator {
	if length <= 0 {
		length = DefaultJoinCodeLength
	}
	if length > 32 {
		length = 32
	}
	g := &JoinCodeGenerator{length: length, maxAttempts: maxAttempts}
	g.draw = g.uuidCode
	return g
}

// WithSource replaces the random source, used to force collisions in tests.
func (g *JoinCodeGenerator) WithSource(draw func() string) *JoinCodeGenerator {
	g.draw = draw
	return g
}

// Generate returns the first drawn code for which taken reports false.
func (g *JoinCodeGenerator) Generate(ctx context.Context, taken func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 1; g.maxAttempts == 0 || attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := g.draw()
		exists, err := taken(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrJoinCodeExhausted
}

func (g *JoinCodeGenerator) uuidCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:g.length]
}
