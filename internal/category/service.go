package category

import (
	"log/slog"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

func (s *Service) GetAllCategories() []CategoryResponse {
	responses := make([]CategoryResponse, len(catalog))
	for i, c := range catalog {
		responses[i] = c.ToResponse()
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses
}

func (s *Service) GetCategoryByName(name string) (*CategoryResponse, bool) {
	for _, c := range catalog {
		if c.Name == name {
			response := c.ToResponse()
			return &response, true
		}
	}
	s.logger.Debug("unknown expense category", "name", name)
	return nil, false
}
