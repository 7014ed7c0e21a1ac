package client

import "github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
