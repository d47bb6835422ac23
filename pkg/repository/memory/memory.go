package memory

import (
	"github.com/secmon-lab/sleuth/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	searchLog *searchLogRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		searchLog: newSearchLogRepository(),
	}
}

func (m *Memory) SearchLog() interfaces.SearchLogRepository {
	return m.searchLog
}

func (m *Memory) Close() error {
	return nil
}
