// Пакет service — бизнес-логика Jobly.
// CompanyCache — LRU-кэш карточек компаний (с вакансиями) с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/jobly/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobly_company_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш компаний.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobly_company_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша компаний.",
	})
)

// CompanyCache — LRU-кэш компаний по handle с автоматическим TTL.
// Per-instance: инвалидация выполняется только в этом процессе.
type CompanyCache struct {
	cache *expirable.LRU[string, *model.Company]
}

// NewCompanyCache создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCompanyCache(maxSize int, ttl time.Duration) *CompanyCache {
	return &CompanyCache{
		cache: expirable.NewLRU[string, *model.Company](maxSize, nil, ttl),
	}
}

// Get возвращает компанию из кэша по handle.
// Обновляет Prometheus-метрики hit/miss.
func (c *CompanyCache) Get(handle string) (*model.Company, bool) {
	val, ok := c.cache.Get(handle)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CompanyCache) Set(handle string, company *model.Company) {
	c.cache.Add(handle, company)
}

// Delete удаляет запись из кэша.
func (c *CompanyCache) Delete(handle string) {
	c.cache.Remove(handle)
}

// Purge очищает кэш целиком. Нужен, когда изменение вакансии
// затрагивает карточку компании, handle которой неизвестен.
func (c *CompanyCache) Purge() {
	c.cache.Purge()
}
