package inmemdb

import (
	"github.com/trezcool/darasa/core/settings"
)

type settingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db}
}

func copySettings(s settings.Settings) settings.Settings {
	if s.APIKeyHash != nil {
		hash := make([]byte, len(s.APIKeyHash))
		copy(hash, s.APIKeyHash)
		s.APIKeyHash = hash
	}
	return s
}

func (repo *settingsRepository) GetSettings(guildID int64) (settings.Settings, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	s, ok := repo.db.settings[guildID]
	if !ok {
		return settings.Settings{}, settings.ErrNotFound
	}
	return copySettings(*s), nil
}

func (repo *settingsRepository) UpsertSettings(s settings.Settings) (settings.Settings, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.settings[s.GuildID]; ok {
		s.ID = existing.ID
	} else {
		s.ID = repo.db.nextPK()
	}
	s = copySettings(s)
	repo.db.settings[s.GuildID] = &s
	return copySettings(s), nil
}
