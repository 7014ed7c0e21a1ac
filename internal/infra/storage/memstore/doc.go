// Package memstore реализует контракты репозиториев в памяти.
// Используется тестами сервисов и use case вместо PostgreSQL.
package memstore
