package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. Repositories built on
// it hydrate the same associations the GORM repositories preload.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	profiles   map[uuid.UUID]*models.Profile
	elections  map[uuid.UUID]*models.Election
	points     map[uuid.UUID]*models.VotingPoint
	candidates map[uuid.UUID]*models.Candidate
	slates     map[uuid.UUID]*models.Slate
	members    map[uuid.UUID][]models.SlateMember
	voters     map[uuid.UUID]*models.Voter
	votes      map[uuid.UUID]*models.Vote
	audits     []models.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]*models.User{},
		profiles:   map[uuid.UUID]*models.Profile{},
		elections:  map[uuid.UUID]*models.Election{},
		points:     map[uuid.UUID]*models.VotingPoint{},
		candidates: map[uuid.UUID]*models.Candidate{},
		slates:     map[uuid.UUID]*models.Slate{},
		members:    map[uuid.UUID][]models.SlateMember{},
		voters:     map[uuid.UUID]*models.Voter{},
		votes:      map[uuid.UUID]*models.Vote{},
	}
}

func (m *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		User:        &memUserRepo{s: m},
		Profile:     &memProfileRepo{s: m},
		Election:    &memElectionRepo{s: m},
		VotingPoint: &memVotingPointRepo{s: m},
		Candidate:   &memCandidateRepo{s: m},
		Slate:       &memSlateRepo{s: m},
		Voter:       &memVoterRepo{s: m},
		Vote:        &memVoteRepo{s: m},
		Audit:       &memAuditRepo{s: m},
	}
}

// addProfile seeds an identity with its profile
func (m *memStore) addProfile(fullName, document, email, role string) *models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	now := time.Now()
	m.users[id] = &models.User{ID: id, Email: email, CreatedAt: now}
	m.profiles[id] = &models.Profile{ID: id, FullName: fullName, Document: document, Role: role, CreatedAt: now}
	p := *m.profiles[id]
	return &p
}

func (m *memStore) auditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]string, 0, len(m.audits))
	for _, a := range m.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

// hydration helpers, callers hold the lock

func (m *memStore) profileWithUser(id uuid.UUID) models.Profile {
	p := *m.profiles[id]
	if u, ok := m.users[id]; ok {
		user := *u
		p.User = &user
	}
	return p
}

func (m *memStore) pointWithElection(id uuid.UUID) models.VotingPoint {
	p := *m.points[id]
	if e, ok := m.elections[p.ElectionID]; ok {
		p.Election = *e
	}
	return p
}

func (m *memStore) slateWithMembers(id uuid.UUID) models.Slate {
	sl := *m.slates[id]
	sl.Members = nil
	for _, mem := range m.members[id] {
		if c, ok := m.candidates[mem.CandidateID]; ok {
			mem.Candidate = *c
		}
		sl.Members = append(sl.Members, mem)
	}
	return sl
}

type memUserRepo struct {
	repository.UserRepository
	s *memStore
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user := *u
	if p, ok := r.s.profiles[id]; ok {
		profile := *p
		user.Profile = &profile
	}
	return &user, nil
}

func (r *memUserRepo) CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Document == profile.Document {
			return fmt.Errorf("%w: ya existe un perfil con este documento de identidad", repository.ErrDuplicateKey)
		}
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: ya existe un usuario con este correo electrónico", repository.ErrDuplicateKey)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	profile.ID = user.ID
	profile.CreatedAt = user.CreatedAt
	u := *user
	u.Profile = nil
	p := *profile
	p.User = nil
	r.s.users[user.ID] = &u
	r.s.profiles[user.ID] = &p
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.EncryptedPassword = hash
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	delete(r.s.profiles, id)
	for vid, v := range r.s.voters {
		if v.ProfileID == id {
			delete(r.s.voters, vid)
		}
	}
	return nil
}

func (r *memUserRepo) FindOrphaned(ctx context.Context, createdBefore time.Time) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for id, u := range r.s.users {
		if _, ok := r.s.profiles[id]; !ok && u.CreatedAt.Before(createdBefore) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memProfileRepo struct {
	repository.ProfileRepository
	s *memStore
}

func (r *memProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := r.s.profileWithUser(id)
	return &p, nil
}

func (r *memProfileRepo) FindByDocument(ctx context.Context, document string) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.profiles {
		if p.Document == document {
			found := r.s.profileWithUser(id)
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProfileRepo) FindAll(ctx context.Context) ([]models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memElectionRepo struct {
	repository.ElectionRepository
	s *memStore
}

func (r *memElectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Election, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.elections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	election := *e
	return &election, nil
}

func (r *memElectionRepo) Create(ctx context.Context, election *models.Election) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if election.ID == uuid.Nil {
		election.ID = uuid.New()
	}
	e := *election
	r.s.elections[e.ID] = &e
	return nil
}

func (r *memElectionRepo) Update(ctx context.Context, election *models.Election) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e := *election
	e.VotingPoints = nil
	r.s.elections[e.ID] = &e
	return nil
}

func (r *memElectionRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.elections[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.IsActive = active
	return nil
}

func (r *memElectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.elections, id)
	return nil
}

func (r *memElectionRepo) FindExpiredActive(ctx context.Context, now time.Time) ([]models.Election, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Election
	for _, e := range r.s.elections {
		if e.IsActive && e.EndDate.Before(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

type memVotingPointRepo struct {
	repository.VotingPointRepository
	s *memStore
}

func (r *memVotingPointRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VotingPoint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.points[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := r.s.pointWithElection(id)
	for sid, sl := range r.s.slates {
		if sl.VotingPointID == id {
			p.Slates = append(p.Slates, r.s.slateWithMembers(sid))
		}
	}
	for _, v := range r.s.voters {
		if v.VotingPointID == id {
			p.Voters = append(p.Voters, *v)
		}
	}
	if p.DelegateID != nil {
		if _, ok := r.s.profiles[*p.DelegateID]; ok {
			d := r.s.profileWithUser(*p.DelegateID)
			p.Delegate = &d
		}
	}
	return &p, nil
}

func (r *memVotingPointRepo) CreateWithBlankVote(ctx context.Context, point *models.VotingPoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if point.DelegateID != nil {
		for _, p := range r.s.points {
			if p.DelegateID != nil && *p.DelegateID == *point.DelegateID {
				return fmt.Errorf("%w: delegado asignado", repository.ErrDuplicateKey)
			}
		}
	}
	if point.ID == uuid.Nil {
		point.ID = uuid.New()
	}
	p := *point
	r.s.points[p.ID] = &p

	candidate := &models.Candidate{ID: uuid.New(), VotingPointID: p.ID, FullName: models.BlankVoteName, IsSystem: true}
	slate := &models.Slate{ID: uuid.New(), VotingPointID: p.ID, Name: models.BlankVoteName, IsSystem: true}
	r.s.candidates[candidate.ID] = candidate
	r.s.slates[slate.ID] = slate
	r.s.members[slate.ID] = []models.SlateMember{{SlateID: slate.ID, CandidateID: candidate.ID}}
	return nil
}

func (r *memVotingPointRepo) Update(ctx context.Context, point *models.VotingPoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.points[point.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Name = point.Name
	p.Location = point.Location
	p.DelegateID = point.DelegateID
	return nil
}

func (r *memVotingPointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.points, id)
	return nil
}

func (r *memVotingPointRepo) IsDelegateAssigned(ctx context.Context, delegateID uuid.UUID, exceptPointID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.points {
		if exceptPointID != nil && id == *exceptPointID {
			continue
		}
		if p.DelegateID != nil && *p.DelegateID == delegateID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memVotingPointRepo) UnassignDelegate(ctx context.Context, delegateID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.points {
		if p.DelegateID != nil && *p.DelegateID == delegateID {
			p.DelegateID = nil
		}
	}
	return nil
}

func (r *memVotingPointRepo) FindAvailableDelegates(ctx context.Context) ([]models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assigned := map[uuid.UUID]bool{}
	for _, p := range r.s.points {
		if p.DelegateID != nil {
			assigned[*p.DelegateID] = true
		}
	}
	var out []models.Profile
	for id, p := range r.s.profiles {
		if p.Role == models.RoleDelegate && !assigned[id] {
			out = append(out, r.s.profileWithUser(id))
		}
	}
	return out, nil
}

type memCandidateRepo struct {
	repository.CandidateRepository
	s *memStore
}

func (r *memCandidateRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.candidates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	candidate := *c
	candidate.VotingPoint = r.s.pointWithElection(c.VotingPointID)
	return &candidate, nil
}

func (r *memCandidateRepo) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Candidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.s.candidates {
		if c.VotingPointID == votingPointID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *memCandidateRepo) Create(ctx context.Context, candidate *models.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if candidate.ID == uuid.Nil {
		candidate.ID = uuid.New()
	}
	c := *candidate
	r.s.candidates[c.ID] = &c
	return nil
}

func (r *memCandidateRepo) Update(ctx context.Context, candidate *models.Candidate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *candidate
	c.VotingPoint = models.VotingPoint{}
	r.s.candidates[c.ID] = &c
	return nil
}

func (r *memCandidateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.candidates, id)
	return nil
}

func (r *memCandidateRepo) CountInVotingPoint(ctx context.Context, votingPointID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := r.s.candidates[id]; ok && c.VotingPointID == votingPointID {
			n++
		}
	}
	return n, nil
}

type memSlateRepo struct {
	repository.SlateRepository
	s *memStore
}

func (r *memSlateRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Slate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.slates[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	sl := r.s.slateWithMembers(id)
	sl.VotingPoint = r.s.pointWithElection(sl.VotingPointID)
	return &sl, nil
}

func (r *memSlateRepo) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID) ([]models.Slate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Slate
	for id, sl := range r.s.slates {
		if sl.VotingPointID == votingPointID {
			out = append(out, r.s.slateWithMembers(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memSlateRepo) Create(ctx context.Context, slate *models.Slate, members []models.SlateMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if slate.ID == uuid.Nil {
		slate.ID = uuid.New()
	}
	sl := *slate
	r.s.slates[sl.ID] = &sl
	for i := range members {
		members[i].SlateID = sl.ID
	}
	r.s.members[sl.ID] = append([]models.SlateMember(nil), members...)
	return nil
}

func (r *memSlateRepo) Update(ctx context.Context, slate *models.Slate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slates[slate.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sl.Name = slate.Name
	sl.Description = slate.Description
	return nil
}

func (r *memSlateRepo) ReplaceMembers(ctx context.Context, slateID uuid.UUID, members []models.SlateMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[slateID] = append([]models.SlateMember(nil), members...)
	return nil
}

func (r *memSlateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.slates, id)
	delete(r.s.members, id)
	return nil
}

func (r *memSlateRepo) IncrementVoteCount(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sl.VoteCount++
	return nil
}

type memVoterRepo struct {
	repository.VoterRepository
	s *memStore
}

func (r *memVoterRepo) hydrate(v *models.Voter) models.Voter {
	voter := *v
	voter.Profile = r.s.profileWithUser(v.ProfileID)
	voter.VotingPoint = r.s.pointWithElection(v.VotingPointID)
	return voter
}

func (r *memVoterRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.voters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	voter := r.hydrate(v)
	return &voter, nil
}

func (r *memVoterRepo) FindByProfile(ctx context.Context, profileID uuid.UUID) (*models.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Active elections first, then links pending a vote
	rank := func(v *models.Voter) int {
		n := 0
		if e, ok := r.s.elections[v.ElectionID]; ok && e.IsActive {
			n += 2
		}
		if !v.HasVoted {
			n++
		}
		return n
	}
	var best *models.Voter
	for _, v := range r.s.voters {
		if v.ProfileID != profileID {
			continue
		}
		if best == nil || rank(v) > rank(best) {
			best = v
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	voter := r.hydrate(best)
	return &voter, nil
}

func (r *memVoterRepo) FindAllByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Voter
	for _, v := range r.s.voters {
		if v.ProfileID == profileID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVoterRepo) ListByVotingPoint(ctx context.Context, votingPointID uuid.UUID, query *repository.ListQuery) ([]models.Voter, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Voter
	for _, v := range r.s.voters {
		if v.VotingPointID == votingPointID {
			out = append(out, r.hydrate(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.FullName < out[j].Profile.FullName })
	return out, int64(len(out)), nil
}

func (r *memVoterRepo) Exists(ctx context.Context, profileID, votingPointID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.exists(profileID, votingPointID), nil
}

func (r *memVoterRepo) exists(profileID, votingPointID uuid.UUID) bool {
	for _, v := range r.s.voters {
		if v.ProfileID == profileID && v.VotingPointID == votingPointID {
			return true
		}
	}
	return false
}

// inElection mirrors the voters_profile_election_key constraint
func (r *memVoterRepo) inElection(profileID, electionID uuid.UUID) *models.Voter {
	for _, v := range r.s.voters {
		if v.ProfileID == profileID && v.ElectionID == electionID {
			return v
		}
	}
	return nil
}

func (r *memVoterRepo) FindInElection(ctx context.Context, profileID, electionID uuid.UUID) (*models.Voter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v := r.inElection(profileID, electionID)
	if v == nil {
		return nil, gorm.ErrRecordNotFound
	}
	voter := *v
	voter.VotingPoint = r.s.pointWithElection(v.VotingPointID)
	return &voter, nil
}

func (r *memVoterRepo) Create(ctx context.Context, voter *models.Voter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.exists(voter.ProfileID, voter.VotingPointID) || r.inElection(voter.ProfileID, voter.ElectionID) != nil {
		return repository.ErrDuplicateKey
	}
	if voter.ID == uuid.Nil {
		voter.ID = uuid.New()
	}
	v := *voter
	r.s.voters[v.ID] = &v
	return nil
}

func (r *memVoterRepo) LinkIgnoreDuplicates(ctx context.Context, profileID uuid.UUID, point *models.VotingPoint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.inElection(profileID, point.ElectionID) != nil {
		return false, nil
	}
	id := uuid.New()
	r.s.voters[id] = &models.Voter{ID: id, ProfileID: profileID, VotingPointID: point.ID, ElectionID: point.ElectionID, CreatedAt: time.Now()}
	return true, nil
}

func (r *memVoterRepo) MarkVoted(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.voters[id]
	if !ok || v.HasVoted {
		return fmt.Errorf("el votante ya fue marcado como votado")
	}
	v.HasVoted = true
	v.VotedAt = &at
	return nil
}

func (r *memVoterRepo) MoveToProfile(ctx context.Context, id, profileID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.voters[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if other := r.inElection(profileID, v.ElectionID); other != nil && other.ID != id {
		return repository.ErrDuplicateKey
	}
	v.ProfileID = profileID
	return nil
}

func (r *memVoterRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.voters, id)
	return nil
}

type memVoteRepo struct {
	repository.VoteRepository
	s *memStore
}

func (r *memVoteRepo) Create(ctx context.Context, vote *models.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.VoterID == vote.VoterID {
			return repository.ErrDuplicateKey
		}
	}
	if vote.ID == uuid.Nil {
		vote.ID = uuid.New()
	}
	v := *vote
	r.s.votes[v.ID] = &v
	return nil
}

func (r *memVoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.votes, id)
	return nil
}

func (r *memVoteRepo) CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, vote := range r.s.votes {
		if v, ok := r.s.voters[vote.VoterID]; ok && v.ProfileID == profileID {
			n++
		}
	}
	return n, nil
}

type memAuditRepo struct {
	repository.AuditRepository
	s *memStore
}

func (r *memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}
