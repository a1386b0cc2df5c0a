package upstream

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fwmsg/aufgaben-web/internal/config"
	applog "github.com/fwmsg/aufgaben-web/internal/log"
)

// EnsureReady prüft beim Start:
// 1) Sind alle Backend-Endpunkte konfiguriert und tragen die Link-Vorlagen {id}?
// 2) Antwortet das Backend? Ein nicht erreichbares Backend ist nur eine Warnung,
//    die Seiten zeigen dann eine Fehlermeldung statt der Tabelle.
func EnsureReady(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := checkTemplates(cfg); err != nil {
		return nil, err
	}
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil && StatusOf(err) == 0 {
		applog.Warnf("Backend %s nicht erreichbar: %v", cfg.Upstream.BaseURL, err)
		return c, nil
	}
	applog.Infof("Backend erreichbar: %s", cfg.Upstream.BaseURL)
	return c, nil
}

func checkTemplates(cfg *config.Config) error {
	api := cfg.Upstream.API
	for name, v := range map[string]string{
		"tableData": api.TableData, "substeps": api.Substeps, "toggleSubstep": api.ToggleSubstep,
		"assign": api.Assign, "assignAll": api.AssignAll, "assignCountry": api.AssignCountry,
		"updateStatus": api.UpdateStatus, "sendReminder": api.SendReminder, "deleteFile": api.DeleteFile,
	} {
		if strings.TrimSpace(v) == "" {
			return errors.Errorf("upstream.api.%s ist leer", name)
		}
	}
	l := cfg.Upstream.Links
	for name, v := range map[string]string{
		"editAufgabe": l.EditAufgabe, "editUserAufgabe": l.EditUserAufgabe, "downloadAufgabe": l.DownloadAufgabe,
	} {
		if !strings.Contains(v, "{id}") {
			return errors.Errorf("upstream.links.%s muss {id} enthalten: %q", name, v)
		}
	}
	return nil
}
