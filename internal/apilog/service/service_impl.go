package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	apilogdomain "github.com/kwachapos/fiscalgate/internal/apilog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type recorder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewRecorder(p Params) apilogdomain.Recorder {
	return &recorder{
		db:    p.DB,
		log:   p.Log.Named("apilog"),
		genID: p.GenID,
	}
}

// Record writes the entry and swallows any storage error. A lost log row
// is preferable to failing the sale that triggered it.
func (r *recorder) Record(ctx context.Context, entry apilogdomain.Entry) {
	row := apilogdomain.APICallLog{
		ID:              r.genID.Generate(),
		Method:          entry.Method,
		URL:             entry.URL,
		RequestHeaders:  marshalHeaders(entry.RequestHeaders),
		RequestBody:     entry.RequestBody,
		ResponseStatus:  entry.ResponseStatus,
		ResponseHeaders: marshalHeaders(entry.ResponseHeaders),
		ResponseBody:    entry.ResponseBody,
		CreatedAt:       time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.log.Warn("failed to write api call log",
			zap.String("url", entry.URL),
			zap.Error(err),
		)
	}
}

func marshalHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(headers)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
