package app

import (
	"github.com/vk/knitgo/internal/registry"
	"github.com/vk/knitgo/modules/logger"
	"github.com/vk/knitgo/modules/memcache"
	"github.com/vk/knitgo/modules/service"
)

// coreModules is the definitive list of all modules that are compiled into
// the knitgo binary.
var coreModules = []registry.Module{
	&logger.Module{},
	&memcache.Module{},
	&service.Module{},
}
