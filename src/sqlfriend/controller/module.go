package controller

import (
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/completer"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/notification"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/orchestrator"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/session"
	"go.uber.org/fx"
)

var Module = fx.Options(
	session.Module,
	client.Module,
	notification.Module,
	completer.Module,
	orchestrator.Module,
)
