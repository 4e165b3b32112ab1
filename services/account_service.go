package services

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_borrow_admin/db"
	"Gin_postgres_redis_borrow_admin/models"
	"Gin_postgres_redis_borrow_admin/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RefreshTokens is the refresh-token persistence the account service needs;
// session.RefreshStore implements it.
type RefreshTokens interface {
	Create(ctx context.Context, id, username string) error
	Get(ctx context.Context, id string) (*session.RefreshSession, error)
	Delete(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, username string) error
}

type AccountService struct {
	catalog[models.Account, *models.Account]
	tokens   *TokenIssuer
	refresh  RefreshTokens
	mailer   Mailer
	hashCost int
}

func NewAccountService(store db.Store, tokens *TokenIssuer, refresh RefreshTokens, mailer Mailer) *AccountService {
	return &AccountService{
		catalog: catalog[models.Account, *models.Account]{
			store: store,
			table: func(s db.Store) db.Table[models.Account] { return s.Accounts() },
			label: "account",
		},
		tokens:   tokens,
		refresh:  refresh,
		mailer:   mailer,
		hashCost: bcrypt.DefaultCost,
	}
}

type AccountPatch struct {
	Password    *string
	AccountType *models.AccountType
	FullName    *string
	Email       *string
	DeleteFlag  *bool
}

// LoginResult carries the tokens plus the student or professor record
// behind the account, when there is one.
type LoginResult struct {
	Account      models.Account
	AccessToken  string
	RefreshToken string
	Student      *models.Student
	Professor    *models.Professor
}

func (s *AccountService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	return string(b), err
}

func (s *AccountService) Get(ctx context.Context, username string) (*models.Account, error) {
	return s.findActive(ctx, s.store, username)
}

// Create stores acc with acc.Password taken as plaintext. A blank password
// is replaced by a generated one that is mailed to acc.Email.
func (s *AccountService) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	var mails []outgoingMail
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		m, err := s.create(ctx, st, acc)
		mails = append(mails, m...)
		return err
	})
	if err != nil {
		return nil, err
	}
	flush(ctx, s.mailer, mails)
	return acc, nil
}

func (s *AccountService) create(ctx context.Context, st db.Store, acc *models.Account) ([]outgoingMail, error) {
	acc.Username = strings.TrimSpace(acc.Username)
	if acc.Username == "" {
		return nil, BadRequest("username is required")
	}
	if acc.AccountType == "" {
		acc.AccountType = models.AccountAdmin
	}
	if !acc.AccountType.Valid() {
		return nil, BadRequest("invalid account type %q", acc.AccountType)
	}
	if err := s.ensureAbsent(ctx, st, acc.Username); err != nil {
		return nil, err
	}
	var mails []outgoingMail
	plain := acc.Password
	if plain == "" {
		generated, err := randomPassword()
		if err != nil {
			return nil, err
		}
		plain = generated
		mails = append(mails, outgoingMail{to: acc.Email, username: acc.Username, password: plain})
	}
	hashed, err := s.hash(plain)
	if err != nil {
		return nil, err
	}
	acc.ID = 0
	acc.Password = hashed
	acc.DeleteFlag = false
	if err := st.Accounts().Create(ctx, acc); err != nil {
		return nil, storeErr(err, s.describe(acc.Username))
	}
	return mails, nil
}

// provision creates the login of a new student or professor; the caller
// mails the returned password once its transaction commits.
func (s *AccountService) provision(ctx context.Context, st db.Store, username, fullName, email string, kind models.AccountType) ([]outgoingMail, error) {
	acc := &models.Account{Username: username, AccountType: kind, FullName: fullName, Email: email}
	return s.create(ctx, st, acc)
}

func (s *AccountService) Update(ctx context.Context, username string, p AccountPatch) (*models.Account, error) {
	var acc *models.Account
	err := s.store.WithinTx(ctx, func(st db.Store) error {
		a, err := s.find(ctx, st, username)
		if err != nil {
			return err
		}
		if p.Password != nil {
			if *p.Password == "" {
				return BadRequest("password must not be empty")
			}
			hashed, err := s.hash(*p.Password)
			if err != nil {
				return err
			}
			a.Password = hashed
		}
		if p.AccountType != nil {
			if !p.AccountType.Valid() {
				return BadRequest("invalid account type %q", *p.AccountType)
			}
			a.AccountType = *p.AccountType
		}
		if p.FullName != nil {
			a.FullName = *p.FullName
		}
		if p.Email != nil {
			a.Email = *p.Email
		}
		if p.DeleteFlag != nil {
			a.DeleteFlag = *p.DeleteFlag
		}
		acc = a
		return storeErr(st.Accounts().Save(ctx, a), s.describe(username))
	})
	return acc, err
}

func (s *AccountService) SoftDelete(ctx context.Context, username string) error {
	if _, err := s.softDelete(ctx, username, nil); err != nil {
		return err
	}
	if s.refresh != nil {
		if err := s.refresh.RevokeAllForUser(ctx, username); err != nil {
			zap.L().Warn("revoke refresh tokens", zap.String("username", username), zap.Error(err))
		}
	}
	return nil
}

func sameAccount(stored, in *models.Account) bool {
	return stored.AccountType == in.AccountType &&
		stored.FullName == in.FullName &&
		stored.Email == in.Email &&
		stored.DeleteFlag == in.DeleteFlag
}

// AddOrUpdate never touches stored passwords.
func (s *AccountService) AddOrUpdate(ctx context.Context, accs []models.Account, overwrite bool) (int, error) {
	var mails []outgoingMail
	n, err := s.addOrUpdate(ctx, accs, overwrite, upsert[models.Account]{
		create: func(ctx context.Context, st db.Store, a *models.Account) error {
			deleted := a.DeleteFlag
			m, err := s.create(ctx, st, a)
			if err != nil {
				return err
			}
			mails = append(mails, m...)
			if deleted {
				a.DeleteFlag = true
				return st.Accounts().Save(ctx, a)
			}
			return nil
		},
		same: sameAccount,
		apply: func(_ context.Context, _ db.Store, stored, in *models.Account) error {
			if in.AccountType != "" {
				if !in.AccountType.Valid() {
					return BadRequest("invalid account type %q", in.AccountType)
				}
				stored.AccountType = in.AccountType
			}
			stored.FullName = in.FullName
			stored.Email = in.Email
			stored.DeleteFlag = in.DeleteFlag
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	flush(ctx, s.mailer, mails)
	return n, nil
}

// EnsureAdmin creates the bootstrap administrator when it does not exist.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	_, err := s.store.Accounts().FindByKey(ctx, username)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}
	_, err = s.Create(ctx, &models.Account{
		Username:    username,
		Password:    password,
		AccountType: models.AccountAdmin,
		FullName:    "Administrator",
	})
	if err == nil {
		zap.L().Info("bootstrap admin created", zap.String("username", username))
	}
	return err
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	acc, err := s.store.Accounts().FindByKey(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, Unauthorized("invalid username or password")
		}
		return nil, err
	}
	if acc.DeleteFlag {
		return nil, Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		return nil, Unauthorized("invalid username or password")
	}
	return s.issue(ctx, acc)
}

// Register creates an account with the given password and signs it in.
func (s *AccountService) Register(ctx context.Context, acc *models.Account) (*LoginResult, error) {
	if acc.Password == "" {
		return nil, BadRequest("password is required")
	}
	plain := acc.Password
	if _, err := s.Create(ctx, acc); err != nil {
		return nil, err
	}
	return s.Login(ctx, acc.Username, plain)
}

// Refresh rotates a refresh token into a fresh token pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	rs, err := s.refresh.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrUnknownToken) {
			return nil, Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	acc, err := s.store.Accounts().FindByKey(ctx, rs.Username)
	if err != nil || acc.DeleteFlag {
		_ = s.refresh.Delete(ctx, refreshToken)
		return nil, Unauthorized("invalid refresh token")
	}
	if err := s.refresh.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issue(ctx, acc)
}

func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Delete(ctx, refreshToken)
}

func (s *AccountService) issue(ctx context.Context, acc *models.Account) (*LoginResult, error) {
	access, err := s.tokens.Issue(acc)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	if err := s.refresh.Create(ctx, refresh, acc.Username); err != nil {
		return nil, err
	}
	res := &LoginResult{Account: *acc, AccessToken: access, RefreshToken: refresh}
	switch acc.AccountType {
	case models.AccountStudent:
		if st, err := s.store.Students().FindByKey(ctx, acc.Username); err == nil {
			res.Student = st
		}
	case models.AccountProf:
		if p, err := s.store.Professors().FindByKey(ctx, acc.Username); err == nil {
			res.Professor = p
		}
	}
	return res, nil
}

// Authenticate resolves the account behind a verified access token.
func (s *AccountService) Authenticate(ctx context.Context, accessToken string) (*models.Account, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return nil, Unauthorized("invalid token")
	}
	acc, err := s.store.Accounts().FindByKey(ctx, claims.Username)
	if err != nil || acc.DeleteFlag {
		return nil, Unauthorized("unauthorized")
	}
	return acc, nil
}

func (s *AccountService) TouchSeen(ctx context.Context, username string) error {
	return s.store.TouchAccountSeen(ctx, username)
}
