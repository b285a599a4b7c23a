package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	httpadapter "github.com/carerelay/carerelay/internal/adapters/http"
	"github.com/carerelay/carerelay/internal/application"
	"github.com/carerelay/carerelay/internal/domain"
	"github.com/carerelay/carerelay/internal/ports"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestRedeemHTTPCollapsesCredentialFailures(t *testing.T) {
	t.Parallel()

	h := newContractHarness()
	router := httpadapter.NewRouter(httpadapter.NewHandler(h.service))

	created := h.createPairing(t, "maple-grove", "contact-1")

	// Unknown code and consumed code must produce byte-identical error bodies.
	unknownRes := postJSON(t, router, "/pairing/v1/redeem", map[string]any{"short_code": "00000000"}, "")
	if unknownRes.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", unknownRes.Code)
	}
	unknownBody := decodeEnvelope(t, unknownRes)
	if unknownBody.Code != "CODE_NOT_USABLE" || unknownBody.Message != "code not usable" {
		t.Fatalf("expected opaque error, got %+v", unknownBody)
	}

	firstRes := postJSON(t, router, "/pairing/v1/redeem", map[string]any{"short_code": created.ShortCode}, "")
	if firstRes.Code != http.StatusOK {
		t.Fatalf("expected 200 redeeming a fresh credential, got %d: %s", firstRes.Code, firstRes.Body.String())
	}

	secondRes := postJSON(t, router, "/pairing/v1/redeem", map[string]any{"short_code": created.ShortCode}, "")
	if secondRes.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for consumed code, got %d", secondRes.Code)
	}
	if unknownRes.Body.String() != secondRes.Body.String() {
		t.Fatalf("unknown and consumed codes must be indistinguishable:\n%s\n%s",
			unknownRes.Body.String(), secondRes.Body.String())
	}
}

func TestRedeemHTTPLockoutReturns429(t *testing.T) {
	t.Parallel()

	cfg := contractConfig()
	cfg.FailedThreshold = 2
	h := newContractHarnessWithConfig(cfg)
	router := httpadapter.NewRouter(httpadapter.NewHandler(h.service))

	for i := 0; i < 2; i++ {
		res := postJSON(t, router, "/pairing/v1/redeem", map[string]any{"short_code": "11111111"}, "")
		if res.Code != http.StatusNotFound {
			t.Fatalf("attempt %d: expected 404, got %d", i, res.Code)
		}
	}

	res := postJSON(t, router, "/pairing/v1/redeem", map[string]any{"short_code": "11111111"}, "")
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", res.Code)
	}
	body := decodeEnvelope(t, res)
	if body.Code != "LOCKED_OUT" {
		t.Fatalf("expected LOCKED_OUT code, got %+v", body)
	}
}

func TestAuthenticatedSurfaceRequiresBearerToken(t *testing.T) {
	t.Parallel()

	h := newContractHarness()
	router := httpadapter.NewRouter(httpadapter.NewHandler(h.service))

	res := postJSON(t, router, "/pairing/v1/pairings", map[string]any{
		"community_code": "maple-grove",
		"contact_refs":   []string{"contact-1"},
	}, "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", res.Code)
	}

	res = postJSON(t, router, "/pairing/v1/pairings", map[string]any{
		"community_code": "maple-grove",
		"contact_refs":   []string{"contact-1"},
	}, "Bearer not-a-real-token")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bogus token, got %d", res.Code)
	}
}

func TestPairingLifecycleHTTPContract(t *testing.T) {
	t.Parallel()

	h := newContractHarness()
	router := httpadapter.NewRouter(httpadapter.NewHandler(h.service))

	token := h.verifier.issue(ports.CaregiverClaims{
		CaregiverID: uuid.New(),
		Role:        "caregiver",
		IssuedAt:    time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	})

	createRes := postJSON(t, router, "/pairing/v1/pairings", map[string]any{
		"community_code": "maple-grove",
		"contact_refs":   []string{"contact-1", "contact-2"},
		"contact_labels": []string{"Sister", "Neighbor"},
	}, "Bearer "+token)
	if createRes.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating a pairing, got %d: %s", createRes.Code, createRes.Body.String())
	}
	var created application.CreatePairingResponse
	if err := json.Unmarshal(decodeEnvelope(t, createRes).Data, &created); err != nil {
		t.Fatalf("decode creation payload: %v", err)
	}
	if len(created.ShortCode) != 8 || created.LinkToken == "" {
		t.Fatalf("expected issued credentials in payload, got %+v", created)
	}

	redeemRes := postJSON(t, router, "/pairing/v1/redeem/link", map[string]any{"link_token": created.LinkToken}, "")
	if redeemRes.Code != http.StatusOK {
		t.Fatalf("expected 200 redeeming link token, got %d: %s", redeemRes.Code, redeemRes.Body.String())
	}
	var redeemed application.RedeemResponse
	if err := json.Unmarshal(decodeEnvelope(t, redeemRes).Data, &redeemed); err != nil {
		t.Fatalf("decode redeem payload: %v", err)
	}
	if redeemed.Status != domain.PairingActive {
		t.Fatalf("expected active pairing, got %s", redeemed.Status)
	}

	confirmRes := postJSON(t, router, fmt.Sprintf("/pairing/v1/pairings/%s/confirm", created.PairingID), nil, "")
	if confirmRes.Code != http.StatusOK {
		t.Fatalf("expected 200 confirming the day, got %d: %s", confirmRes.Code, confirmRes.Body.String())
	}
	var view application.DailyStatusView
	if err := json.Unmarshal(decodeEnvelope(t, confirmRes).Data, &view); err != nil {
		t.Fatalf("decode confirm payload: %v", err)
	}
	if view.State != domain.DailyConfirmed {
		t.Fatalf("expected confirmed day, got %s", view.State)
	}

	revokeReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/pairing/v1/pairings/%s", created.PairingID), nil)
	revokeReq.Header.Set("Authorization", "Bearer "+token)
	revokeRes := httptest.NewRecorder()
	router.ServeHTTP(revokeRes, revokeReq)
	if revokeRes.Code != http.StatusOK {
		t.Fatalf("expected 200 revoking, got %d: %s", revokeRes.Code, revokeRes.Body.String())
	}
}

func postJSON(t *testing.T, router http.Handler, path string, payload any, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func decodeEnvelope(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response envelope: %v (%s)", err, res.Body.String())
	}
	return out
}

type harness struct {
	service  *application.Service
	verifier *contractVerifier
}

func (h *harness) createPairing(t *testing.T, communityCode string, contactRefs ...string) application.CreatePairingResponse {
	t.Helper()
	created, err := h.service.CreatePairing(context.Background(), uuid.New(), application.CreatePairingRequest{
		CommunityCode: communityCode,
		ContactRefs:   contactRefs,
	})
	if err != nil {
		t.Fatalf("create pairing: %v", err)
	}
	return created
}

func contractConfig() application.Config {
	return application.Config{
		CredentialTTL:    72 * time.Hour,
		FailedThreshold:  5,
		AttemptWindow:    30 * time.Minute,
		LockoutDuration:  30 * time.Minute,
		DailyDeadline:    20,
		Timezone:         time.UTC,
		IssuanceRetries:  20,
		SweepBatchSize:   500,
		RecentSeriesDays: 7,
	}
}

func newContractHarness() *harness {
	return newContractHarnessWithConfig(contractConfig())
}

func newContractHarnessWithConfig(cfg application.Config) *harness {
	pairings := &contractPairings{
		byID:     map[uuid.UUID]domain.Pairing{},
		contacts: map[uuid.UUID][]domain.Contact{},
	}
	credentials := &contractCredentials{byID: map[uuid.UUID]domain.Credential{}}
	pairings.credentials = credentials
	credentials.pairings = pairings
	verifier := &contractVerifier{tokens: map[string]ports.CaregiverClaims{}}

	svc := application.NewService(application.Dependencies{
		Config:      cfg,
		Pairings:    pairings,
		Credentials: credentials,
		Daily: &contractDaily{
			rows: map[string]domain.DailyStatus{},
			byID: map[uuid.UUID]string{},
		},
		Episodes: &contractEpisodes{
			byID:  map[uuid.UUID]domain.EscalationEpisode{},
			byDay: map[string]uuid.UUID{},
		},
		Debriefs: noopDebriefs{},
		Outbox:   noopOutbox{},
		Attempts: &contractAttempts{state: map[string]ports.AttemptState{}},
		Hasher:   contractHasher{},
		Codes:    &contractCodes{},
		Verifier: verifier,
	})

	return &harness{service: svc, verifier: verifier}
}

type contractPairings struct {
	mu          sync.Mutex
	byID        map[uuid.UUID]domain.Pairing
	contacts    map[uuid.UUID][]domain.Contact
	credentials *contractCredentials
}

func (c *contractPairings) CreateWithCredentialTx(_ context.Context, params ports.CreatePairingTxParams, _ ports.OutboxEvent) (domain.Pairing, domain.Credential, error) {
	pairing := domain.Pairing{
		PairingID:     uuid.New(),
		CaregiverID:   params.CaregiverID,
		DependentRef:  params.DependentRef,
		CommunityCode: params.CommunityCode,
		Status:        domain.PairingPending,
		CreatedAt:     params.CreatedAt,
	}
	contacts := make([]domain.Contact, 0, len(params.Contacts))
	for _, contact := range params.Contacts {
		contact.PairingID = pairing.PairingID
		contacts = append(contacts, contact)
	}
	credential := domain.Credential{
		CredentialID:  uuid.New(),
		PairingID:     pairing.PairingID,
		ShortCodeHash: params.ShortCodeHash,
		LinkTokenHash: params.LinkTokenHash,
		CommunityCode: params.CommunityCode,
		Status:        domain.CredentialIssued,
		ExpiresAt:     params.CreatedAt.Add(params.CredentialTTL),
		CreatedAt:     params.CreatedAt,
	}

	c.mu.Lock()
	c.byID[pairing.PairingID] = pairing
	c.contacts[pairing.PairingID] = contacts
	c.mu.Unlock()

	c.credentials.put(credential)
	return pairing, credential, nil
}

func (c *contractPairings) GetByID(_ context.Context, pairingID uuid.UUID) (domain.Pairing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byID[pairingID]
	if !ok {
		return domain.Pairing{}, domain.ErrNotFound
	}
	return p, nil
}

func (c *contractPairings) ListByCaregiver(_ context.Context, caregiverID uuid.UUID, _, _ int) ([]domain.Pairing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Pairing
	for _, p := range c.byID {
		if p.CaregiverID == caregiverID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *contractPairings) ListActiveIDs(_ context.Context, limit, offset int) ([]uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range c.byID {
		if p.Status == domain.PairingActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (c *contractPairings) ListContacts(_ context.Context, pairingID uuid.UUID) ([]domain.Contact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Contact{}, c.contacts[pairingID]...), nil
}

func (c *contractPairings) Revoke(_ context.Context, pairingID uuid.UUID, revokedAt time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byID[pairingID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != domain.PairingPending && p.Status != domain.PairingActive {
		return false, nil
	}
	p.Status = domain.PairingRevoked
	p.RevokedAt = &revokedAt
	c.byID[pairingID] = p
	return true, nil
}

func (c *contractPairings) ExpireOverdue(context.Context, time.Time) (int64, error) { return 0, nil }

func (c *contractPairings) activate(pairingID uuid.UUID, at time.Time) (domain.Pairing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.byID[pairingID]
	if !ok {
		return domain.Pairing{}, domain.ErrNotFound
	}
	if p.Status != domain.PairingPending {
		return domain.Pairing{}, domain.ErrConflict
	}
	p.Status = domain.PairingActive
	p.ActivatedAt = &at
	c.byID[pairingID] = p
	return p, nil
}

type contractCredentials struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]domain.Credential
	pairings *contractPairings
}

func (c *contractCredentials) put(credential domain.Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[credential.CredentialID] = credential
}

func (c *contractCredentials) GetByShortCodeHash(_ context.Context, hash string) (domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cred := range c.byID {
		if cred.ShortCodeHash == hash {
			return cred, nil
		}
	}
	return domain.Credential{}, domain.ErrNotFound
}

func (c *contractCredentials) GetByLinkTokenHash(_ context.Context, hash string) (domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cred := range c.byID {
		if cred.LinkTokenHash == hash {
			return cred, nil
		}
	}
	return domain.Credential{}, domain.ErrNotFound
}

func (c *contractCredentials) GetByPairingID(_ context.Context, pairingID uuid.UUID) (domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cred := range c.byID {
		if cred.PairingID == pairingID {
			return cred, nil
		}
	}
	return domain.Credential{}, domain.ErrNotFound
}

func (c *contractCredentials) HashExists(_ context.Context, shortCodeHash string, now time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cred := range c.byID {
		if cred.ShortCodeHash == shortCodeHash && cred.Status == domain.CredentialIssued && cred.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (c *contractCredentials) RedeemTx(_ context.Context, credentialID uuid.UUID, redeemedAt time.Time, _ ports.OutboxEvent) (domain.Pairing, error) {
	c.mu.Lock()
	cred, ok := c.byID[credentialID]
	if !ok {
		c.mu.Unlock()
		return domain.Pairing{}, domain.ErrNotFound
	}
	if cred.RedeemedAt != nil || cred.Status != domain.CredentialIssued || !cred.ExpiresAt.After(redeemedAt) {
		c.mu.Unlock()
		return domain.Pairing{}, domain.ErrAlreadyRedeemed
	}
	cred.RedeemedAt = &redeemedAt
	cred.Status = domain.CredentialRedeemed
	c.byID[credentialID] = cred
	c.mu.Unlock()

	return c.pairings.activate(cred.PairingID, redeemedAt)
}

func (c *contractCredentials) ExpireIssued(context.Context, time.Time) (int64, error) { return 0, nil }

type contractDaily struct {
	mu   sync.Mutex
	rows map[string]domain.DailyStatus
	byID map[uuid.UUID]string
}

func dayKey(pairingID uuid.UUID, statusDate string) string {
	return pairingID.String() + "|" + statusDate
}

func (c *contractDaily) GetOrCreate(_ context.Context, params ports.DailyStatusUpsert) (domain.DailyStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(params.PairingID, params.StatusDate)
	if row, ok := c.rows[key]; ok {
		return row, nil
	}
	row := domain.DailyStatus{
		StatusID:      uuid.New(),
		PairingID:     params.PairingID,
		StatusDate:    params.StatusDate,
		CommunityCode: params.CommunityCode,
		State:         domain.DailyUnconfirmed,
		CreatedAt:     params.Now,
		UpdatedAt:     params.Now,
	}
	c.rows[key] = row
	c.byID[row.StatusID] = key
	return row, nil
}

func (c *contractDaily) Get(_ context.Context, pairingID uuid.UUID, statusDate string) (domain.DailyStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	row, ok := c.rows[dayKey(pairingID, statusDate)]
	if !ok {
		return domain.DailyStatus{}, domain.ErrNotFound
	}
	return row, nil
}

func (c *contractDaily) ListRecent(context.Context, uuid.UUID, int, string) ([]domain.DailyStatus, error) {
	return nil, nil
}

func (c *contractDaily) Transition(_ context.Context, statusID uuid.UUID, fromState, toState domain.DailyState, confirmedAt *time.Time, helpFlag bool, now time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.byID[statusID]
	if !ok {
		return false, domain.ErrNotFound
	}
	row := c.rows[key]
	if row.State != fromState {
		return false, nil
	}
	row.State = toState
	if confirmedAt != nil {
		row.ConfirmedAt = confirmedAt
	}
	row.HelpFlag = helpFlag
	row.UpdatedAt = now
	c.rows[key] = row
	return true, nil
}

func (c *contractDaily) SetCareActions(_ context.Context, statusID uuid.UUID, actions []string, note string, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.byID[statusID]
	if !ok {
		return domain.ErrNotFound
	}
	row := c.rows[key]
	row.CaregiverActions = append([]string{}, actions...)
	row.ActionsDoneCount = len(actions)
	row.CaregiverNote = note
	row.UpdatedAt = now
	c.rows[key] = row
	return nil
}

func (c *contractDaily) ListUnconfirmed(context.Context, string, int) ([]domain.DailyStatus, error) {
	return nil, nil
}

type contractEpisodes struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]domain.EscalationEpisode
	byDay map[string]uuid.UUID
}

func (c *contractEpisodes) Create(_ context.Context, episode domain.EscalationEpisode) (domain.EscalationEpisode, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := dayKey(episode.PairingID, episode.StatusDate)
	if existingID, ok := c.byDay[key]; ok {
		return c.byID[existingID], false, nil
	}
	c.byDay[key] = episode.EpisodeID
	c.byID[episode.EpisodeID] = episode
	return episode, true, nil
}

func (c *contractEpisodes) GetByID(_ context.Context, episodeID uuid.UUID) (domain.EscalationEpisode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[episodeID]
	if !ok {
		return domain.EscalationEpisode{}, domain.ErrNotFound
	}
	return e, nil
}

func (c *contractEpisodes) ListOpenByPairing(context.Context, uuid.UUID) ([]domain.EscalationEpisode, error) {
	return nil, nil
}

func (c *contractEpisodes) AdvanceStage(_ context.Context, episodeID uuid.UUID, stage domain.EscalationStage, contactIndex int, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[episodeID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Stage = stage
	e.ContactIndex = contactIndex
	c.byID[episodeID] = e
	return nil
}

func (c *contractEpisodes) Resolve(_ context.Context, episodeID uuid.UUID, resolution string, resolvedAt time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[episodeID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.ResolvedAt != nil {
		return false, nil
	}
	e.ResolvedAt = &resolvedAt
	e.Resolution = resolution
	c.byID[episodeID] = e
	return true, nil
}

type noopDebriefs struct{}

func (noopDebriefs) Create(context.Context, domain.Debrief) error { return nil }
func (noopDebriefs) GetLatestByEpisode(context.Context, uuid.UUID) (domain.Debrief, error) {
	return domain.Debrief{}, domain.ErrNotFound
}

type noopOutbox struct{}

func (noopOutbox) Enqueue(context.Context, ports.OutboxEvent) error { return nil }
func (noopOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (noopOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (noopOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (noopOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

type contractAttempts struct {
	mu    sync.Mutex
	state map[string]ports.AttemptState
}

func (c *contractAttempts) Get(_ context.Context, keyHash string) (ports.AttemptState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state[keyHash], nil
}

func (c *contractAttempts) RecordFailure(_ context.Context, keyHash string, now time.Time, threshold int, _ time.Duration, lockout time.Duration) (ports.AttemptState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state[keyHash]
	st.FailedCount++
	if st.FailedCount >= threshold {
		lockedUntil := now.Add(lockout)
		st.LockedUntil = &lockedUntil
	}
	c.state[keyHash] = st
	return st, nil
}

func (c *contractAttempts) Clear(_ context.Context, keyHash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state, keyHash)
	return nil
}

type contractHasher struct{}

func (contractHasher) HashShortCode(code string) string   { return "sc:" + code }
func (contractHasher) HashLinkToken(token string) string  { return "lt:" + token }
func (contractHasher) HashIdentifier(value string) string { return "id:" + value }

type contractCodes struct {
	mu      sync.Mutex
	counter int
}

func (c *contractCodes) ShortCode() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return fmt.Sprintf("%08d", 42000000+c.counter), nil
}

func (c *contractCodes) LinkToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return fmt.Sprintf("contract-link-token-%d", c.counter), nil
}

func (c *contractCodes) DependentRef() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return fmt.Sprintf("dep_contract%03d", c.counter), nil
}

type contractVerifier struct {
	mu     sync.Mutex
	tokens map[string]ports.CaregiverClaims
}

func (c *contractVerifier) issue(claims ports.CaregiverClaims) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := uuid.NewString()
	c.tokens[token] = claims
	return token
}

func (c *contractVerifier) ParseAndValidate(token string) (ports.CaregiverClaims, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	claims, ok := c.tokens[token]
	if !ok {
		return ports.CaregiverClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
