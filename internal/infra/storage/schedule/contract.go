package schedule

import "github.com/randevux/booking-service/pkg/dbmetrics"

// DBExecutor интерфейс из dbmetrics, подходят и *dbmetrics.DB, и транзакции
type DBExecutor = dbmetrics.DBExecutor
