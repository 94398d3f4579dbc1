package waterheater

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/hive"
	"github.com/urmzd/hive-hotwater/pkg/integration"
	"github.com/urmzd/hive-hotwater/pkg/platform"
)

// SetupEntry binds a hot water client to httpClient for the integration set
// up under entryID and registers one entity per discovered water heater.
// Entities are polled once before they are exposed.
func SetupEntry(
	ctx context.Context,
	reg *integration.Registry,
	entryID string,
	httpClient *http.Client,
	add platform.AddEntitiesFunc,
) error {
	integ, err := reg.Get(entryID)
	if err != nil {
		return err
	}

	integ.Hotwater = integ.NewHotwater(httpClient)

	records := integ.Devices[hive.PlatformWaterHeater]
	if len(records) == 0 {
		log.Info().Str("entry", entryID).Msg("No Hive water heaters discovered")
		return nil
	}

	entities := make([]platform.Entity, 0, len(records))
	for _, rec := range records {
		entities = append(entities, NewEntity(integ, rec))
	}
	return add(ctx, entities, true)
}

// SetupPlatform is the legacy YAML-style entry point.
//
// Deprecated: water heaters are set up from config entries via SetupEntry.
// SetupPlatform does nothing.
func SetupPlatform(context.Context, platform.AddEntitiesFunc) error {
	return nil
}
