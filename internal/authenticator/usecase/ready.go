package usecase

import (
	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
)

// readyToken returns the initialized form of tok, deriving its key only when
// the cache has none for the same seed.
func (s *Usecase) readyToken(tok entity.AuthenticatorToken, backupPassword string) (*entity.ReadyToken, error) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()

	key := tok.CacheKey()
	if rt, ok := s.ready[key]; ok && rt.EncryptedSeed == tok.EncryptedSeed {
		return rt, nil
	}

	rt, err := tok.Initialize(s.kdf, backupPassword)
	if err != nil {
		return nil, err
	}
	s.ready[key] = rt

	return rt, nil
}

func (s *Usecase) resetReady() {
	s.readyMu.Lock()
	clear(s.ready)
	s.readyMu.Unlock()
}
