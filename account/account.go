package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"
	jsonpatch "gopkg.in/evanphx/json-patch.v4"

	"github.com/openbid/broker/config"
	"github.com/openbid/broker/errortypes"
)

// Fetcher retrieves the raw account config document for an account id.
// Implementations back onto a database, the filesystem or an HTTP service.
type Fetcher interface {
	FetchAccount(ctx context.Context, accountID string) (json.RawMessage, error)
}

// NotFoundError is returned by a Fetcher when no config exists for the
// account id. It is not a fetch failure: depending on the host config the
// request either proceeds on account defaults or is rejected.
type NotFoundError struct {
	AccountID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.AccountID)
}

// Service resolves account configs: fetch, merge over host defaults,
// validate, cache. Merged accounts are cached with a TTL, failures are
// never cached so a transient fetch error does not stick.
type Service struct {
	cfg        *config.Configuration
	fetcher    Fetcher
	cache      *freecache.Cache
	ttlSeconds int
	group      singleflight.Group
}

func NewService(cfg *config.Configuration, fetcher Fetcher) *Service {
	return &Service{
		cfg:        cfg,
		fetcher:    fetcher,
		cache:      freecache.NewCache(cfg.AccountCache.SizeBytes),
		ttlSeconds: cfg.AccountCache.TTLSeconds,
	}
}

// GetAccount returns the effective account config for the id: the fetched
// document merged over the host account defaults. An unknown account either
// runs on pure defaults or fails, per the account_required host setting.
func (s *Service) GetAccount(ctx context.Context, accountID string) (*config.Account, []error) {
	if accountID == "" {
		if s.cfg.AccountRequired {
			return nil, []error{&errortypes.AcctRequired{
				Message: "The server has been configured to discard requests without a valid Account ID. Please reach out to the service operator.",
			}}
		}
		return s.defaultAccount(accountID)
	}

	key := []byte(accountID)
	if cached, err := s.cache.Get(key); err == nil {
		account := &config.Account{}
		if err := json.Unmarshal(cached, account); err != nil {
			// a cached entry that no longer parses is dropped and refetched
			glog.Warningf("dropping unreadable cached account %s: %v", accountID, err)
			s.cache.Del(key)
		} else {
			return s.checkDisabled(account)
		}
	}

	// singleflight collapses concurrent misses for the same account into one
	// fetch-and-merge. The fetch runs on a detached context so that the first
	// caller cancelling does not fail every waiter sharing the flight.
	fetchCtx := context.WithoutCancel(ctx)
	merged, err, _ := s.group.Do(accountID, func() (interface{}, error) {
		raw, err := s.fetcher.FetchAccount(fetchCtx, accountID)
		if err != nil {
			return nil, err
		}
		return jsonpatch.MergePatch(s.cfg.AccountDefaultsJSON(), raw)
	})
	if err != nil {
		if _, notFound := err.(NotFoundError); notFound {
			if s.cfg.AccountRequired {
				return nil, []error{&errortypes.AcctRequired{
					Message: "The server could not verify the Account ID. Please reach out to the service operator.",
				}}
			}
			return s.defaultAccount(accountID)
		}
		return nil, []error{err}
	}

	mergedJSON := merged.([]byte)

	account := &config.Account{}
	if err := json.Unmarshal(mergedJSON, account); err != nil {
		return nil, []error{&errortypes.MalformedAcct{
			Message: fmt.Sprintf("The account config for account id %q is malformed. Please reach out to the service operator.", accountID),
		}}
	}
	account.ID = accountID

	if errs := account.Validate(); len(errs) > 0 {
		return nil, errs
	}

	s.cacheAccount(key, account)

	return s.checkDisabled(account)
}

// defaultAccount builds an account from host defaults alone.
func (s *Service) defaultAccount(accountID string) (*config.Account, []error) {
	account := &config.Account{}
	if defaults := s.cfg.AccountDefaultsJSON(); len(defaults) > 0 {
		if err := json.Unmarshal(defaults, account); err != nil {
			return nil, []error{&errortypes.MalformedAcct{
				Message: "The host account defaults are malformed. Please reach out to the service operator.",
			}}
		}
	}
	account.ID = accountID
	return s.checkDisabled(account)
}

func (s *Service) checkDisabled(account *config.Account) (*config.Account, []error) {
	if account.Disabled {
		return nil, []error{&errortypes.AccountDisabled{
			Message: fmt.Sprintf("Account ID %s is disabled, please reach out to the service operator.", account.ID),
		}}
	}
	return account, nil
}

func (s *Service) cacheAccount(key []byte, account *config.Account) {
	encoded, err := json.Marshal(account)
	if err != nil {
		glog.Warningf("not caching account %s: %v", account.ID, err)
		return
	}
	if err := s.cache.Set(key, encoded, s.ttlSeconds); err != nil {
		// an entry too large for the cache is served uncached
		glog.Warningf("not caching account %s: %v", account.ID, err)
	}
}
