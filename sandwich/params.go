package sandwich

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wtf-protocol/helpers/commitment"
	"github.com/wtf-protocol/helpers/jwt"
)

const (
	DefaultIDField         = "sub"
	DefaultExpirationField = "exp"
)

// Options selects the payload claims holding the id and the expiration.
// Empty fields fall back to DefaultIDField and DefaultExpirationField.
type Options struct {
	IDField         string
	ExpirationField string
}

// VerificationParams is everything a verifier contract needs to check a JWT.
// It is not modified after BuildVerificationParams returns.
type VerificationParams struct {
	ID                  string
	ExpirationTimestamp int64
	ExpirationTime      string

	// Signature is the JWT signature as an unsigned big-endian integer.
	Signature *big.Int

	// Message is header.payload, HashedMessage its SHA-256.
	Message       string
	HashedMessage string

	// PayloadByteOffset is where the payload starts in Message.
	PayloadByteOffset int

	IDSandwich  Sandwich
	ExpSandwich Sandwich
	AudSandwich Sandwich

	token *jwt.Token
}

// Token returns the decomposed JWT the params were built from.
func (p *VerificationParams) Token() *jwt.Token { return p.token }

// Sandwiches returns the id, expiration and audience sandwiches.
func (p *VerificationParams) Sandwiches() []Sandwich {
	return []Sandwich{p.IDSandwich, p.ExpSandwich, p.AudSandwich}
}

// Commitments returns the commitment pair binding Message to address.
func (p *VerificationParams) Commitments(address string) (commitment.Pair, error) {
	return commitment.Generate(address, []byte(p.Message))
}

// VerifyMeArgs returns the verifier contract arguments in call order.
func (p *VerificationParams) VerifyMeArgs() []any {
	return []any{
		p.Signature,
		p.Message,
		p.PayloadByteOffset,
		p.IDSandwich,
		p.ExpSandwich,
		p.AudSandwich,
	}
}

// BuildVerificationParams decomposes rawToken and locates the id, expiration
// and audience sandwiches in its payload, fetching markers from source
// concurrently.
//
// A token that cannot be decomposed fails the whole call. A claim that cannot
// be sandwiched only leaves its Sandwich without a Range: the params are still
// returned, together with the joined *ClaimError of every failed claim.
func BuildVerificationParams(ctx context.Context, rawToken string, source MarkerSource, opts Options) (*VerificationParams, error) {
	log := zerolog.Ctx(ctx)

	if opts.IDField == "" {
		opts.IDField = DefaultIDField
	}
	if opts.ExpirationField == "" {
		opts.ExpirationField = DefaultExpirationField
	}

	token, err := jwt.Parse(rawToken)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	message := token.Message()
	params := &VerificationParams{
		Signature:         token.SignatureInt(),
		Message:           message,
		HashedMessage:     commitment.SHA256Hex(message),
		PayloadByteOffset: token.PayloadByteOffset(),
		token:             token,
	}

	idText, idErr := claimText(token, opts.IDField)
	params.ID = idText

	expText, expErr := claimText(token, opts.ExpirationField)
	if expErr == nil {
		params.ExpirationTime = expText
		if params.ExpirationTimestamp, err = strconv.ParseInt(expText, 10, 64); err != nil {
			expErr = fmt.Errorf("claim %q: %w", opts.ExpirationField, err)
		}
	}

	// Each goroutine owns one sandwich; nothing else is shared.
	var g errgroup.Group
	g.Go(func() error {
		params.IDSandwich = breadSandwich(ctx, source, ClaimID, idText, idErr, token)
		return nil
	})
	g.Go(func() error {
		params.ExpSandwich = breadSandwich(ctx, source, ClaimExpiry, expText, expErr, token)
		return nil
	})
	g.Go(func() error {
		params.AudSandwich = audSandwich(ctx, source, token)
		return nil
	})
	_ = g.Wait()

	var errs []error
	for _, s := range params.Sandwiches() {
		if s.Err == nil {
			continue
		}
		log.Warn().
			Err(s.Err).
			Stringer("claim", s.Claim).
			Bytes("searched", s.Value).
			Bytes("payload", token.Payload.Decoded).
			Msg("failed to sandwich claim")
		errs = append(errs, s.Err)
	}

	return params, errors.Join(errs...)
}

func breadSandwich(ctx context.Context, source MarkerSource, kind ClaimKind, value string, valueErr error, token *jwt.Token) Sandwich {
	if valueErr != nil {
		return Sandwich{Claim: kind, Err: &ClaimError{Claim: kind, Err: valueErr}}
	}

	bread, err := source.Bread(ctx, kind)
	if err != nil {
		return Sandwich{Claim: kind, Err: &ClaimError{Claim: kind, Err: fmt.Errorf("failed to fetch bread: %w", err)}}
	}

	return Locate(kind, Build(value, bread.Bottom, bread.Top).Bytes, token.Payload.Raw)
}

func audSandwich(ctx context.Context, source MarkerSource, token *jwt.Token) Sandwich {
	aud, err := source.Audience(ctx)
	if err != nil {
		return Sandwich{Claim: ClaimAudience, Err: &ClaimError{Claim: ClaimAudience, Err: fmt.Errorf("failed to fetch audience: %w", err)}}
	}

	return Locate(ClaimAudience, aud, token.Payload.Raw)
}

func claimText(token *jwt.Token, field string) (string, error) {
	v, ok := token.Payload.Claims[field]
	if !ok {
		return "", fmt.Errorf("claim %q missing from payload", field)
	}

	text, err := ClaimText(v)
	if err != nil {
		return "", fmt.Errorf("claim %q: %w", field, err)
	}

	return text, nil
}
