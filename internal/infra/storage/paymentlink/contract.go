package paymentlink

import "github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor

type rowScanner interface {
	Scan(dest ...interface{}) error
}
