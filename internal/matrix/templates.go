package matrix

import (
	"html/template"
)

var funcs = template.FuncMap{
	"formatDate":     FormatDate,
	"formatDateFull": FormatDateFull,
	"buildURL":       BuildURL,
	"buildURLNext":   BuildURLWithNext,
	"withNext":       appendNext,
	"markdown":       renderMarkdown,
}

var tpl = template.Must(template.New("matrix").Funcs(funcs).Parse(`
{{define "csrf"}}{{if .}}<input type="hidden" name="csrf_token" value="{{.}}">{{end}}{{end}}

{{define "status"}}<form method="post" action="{{.Action}}" class="m-0">{{template "csrf" .CSRF}}<input type="hidden" name="next" value="{{.Next}}"><input type="hidden" name="pending" value="{{.Pending}}"><input type="hidden" name="erledigt" value="{{.Erledigt}}"><button type="submit" class="dropdown-item {{.Class}}"><i class="bi {{.Icon}} me-2"></i>{{.Label}}</button></form>{{end}}

{{define "badge"}}<span id="pending-badge-{{.ID}}" class="badge {{if .Done}}bg-warning border border-2 border-success{{else}}bg-warning{{end}}">Pending{{if .DoneOpen}} {{.DoneOpen}}{{end}}</span>{{end}}

{{define "download"}}{{if .UA.File}}<a href="{{buildURL .URLs.DownloadAufgabe .UA.ID}}" class="btn btn-sm btn-outline-primary download-btn" target="_blank" data-bs-toggle="tooltip" data-bs-placement="top" title="{{.DownloadedBy}}"><i class="bi bi-download"></i></a>{{end}}{{end}}

{{define "edit"}}<li><a class="dropdown-item" href="{{buildURLNext .URLs.EditUserAufgabe .UA.ID .Next}}"><i class="bi bi-pencil me-2"></i>Bearbeiten</a></li>{{end}}

{{define "completed"}}<div id="completed-task-template-{{.UA.ID}}" class="{{if not .ShowCompleted}}d-none{{end}}">{{template "download" .}}<div class="dropdown d-inline"><button class="btn btn-sm dropdown-toggle" type="button" data-bs-toggle="dropdown" aria-expanded="false"><span data-tooltip="Erledigt am {{formatDateFull .UA.ErledigtAm}}" class="badge bg-success">Erledigt</span></button><ul class="dropdown-menu">{{template "edit" .}}<li>{{template "status" (.Status false false "Als nicht erledigt markieren" "text-danger" "bi-x-lg")}}</li><li>{{template "status" (.Status true false "Als pending markieren" "text-warning" "bi-arrow-counterclockwise")}}</li>{{if .UA.File}}<li><a class="dropdown-item text-danger" href="{{buildURLNext .URLs.DeleteFile .UA.ID .Next}}"><i class="bi bi-trash me-2"></i>Datei löschen</a></li>{{end}}</ul></div></div>{{end}}

{{define "pending"}}<div id="pending-task-template-{{.UA.ID}}" class="{{if not .ShowPending}}d-none{{end}}">{{template "download" .}}<div class="dropdown d-inline task-status-buttons"><button class="btn btn-sm dropdown-toggle btn-pending btn-zwischenschritte" type="button" data-bs-toggle="dropdown" data-user-aufgabe-id="{{.UA.ID}}" data-substeps-url="{{buildURL .URLs.Substeps .UA.ID}}" data-loaded="false" aria-expanded="false">{{template "badge" .Badge}}</button><ul class="dropdown-menu">{{template "edit" .}}<li><button type="button" class="dropdown-item btn-load-substeps" data-bs-toggle="modal" data-bs-target="#taskZwischenschritteModal" data-user-aufgabe-id="{{.UA.ID}}" data-substeps-url="{{buildURL .URLs.Substeps .UA.ID}}"><i class="bi bi-list me-2"></i>Zwischenschritte anzeigen</button></li><li>{{template "status" (.Status false false "Als nicht erledigt markieren" "text-danger" "bi-x-lg")}}</li><li>{{template "status" (.Status false true "Als erledigt markieren" "text-success" "bi-check-lg")}}</li></ul></div></div>{{end}}

{{define "reminder"}}{{if .ReminderEnabled}}<form method="post" action="{{buildURL .URLs.SendReminder .UA.ID}}" class="m-0">{{template "csrf" .CSRF}}<input type="hidden" name="next" value="{{.Next}}"><button type="submit" class="dropdown-item btn-reminder"><i class="bi bi-bell-fill me-2"></i>Erinnern{{if .UA.LastReminder}} <small class="text-muted last-reminder-date">(Zuletzt {{formatDate .UA.LastReminder}})</small>{{end}}</button></form>{{else}}<button type="button" class="dropdown-item btn-reminder{{if not .UA.MailNotifications}} disabled{{end}}"{{if .UA.CurrentlySending}} disabled{{end}}>{{if .UA.MailNotifications}}<i class="bi bi-bell-fill me-2"></i>Erinnern{{if .UA.LastReminder}} <small class="text-muted last-reminder-date">(Zuletzt {{formatDate .UA.LastReminder}})</small>{{end}}{{else}}<i class="bi bi-bell-slash-fill me-2"></i>{{.User.FirstName}} hat E-Mail-Benachrichtigungen deaktiviert{{end}}</button>{{end}}{{end}}

{{define "upcoming"}}<div id="upcoming-task-template-{{.UA.ID}}" class="{{if not .ShowUpcoming}}d-none{{end}}"><div class="dropdown d-inline task-status-buttons"><button class="btn btn-sm dropdown-toggle" type="button" data-bs-toggle="dropdown" aria-expanded="false"><span data-tooltip="Fällig am {{formatDateFull .UA.Faellig}}" class="badge {{.UpcomingBadge}}">{{formatDate .UA.Faellig}}</span></button><ul class="dropdown-menu">{{template "edit" .}}<li>{{template "reminder" .}}</li><li>{{template "status" (.Status true false "Als pending markieren" "text-warning btn-pending" "bi-arrow-counterclockwise")}}</li><li>{{template "status" (.Status false true "Als erledigt markieren" "text-success btn-done" "bi-check-lg")}}</li></ul></div></div>{{end}}

{{define "cell"}}{{if eq .Kind 0}}<td class="text-center p-0 rounded-4"><div class="p-0 m-0"><a data-bs-toggle="tooltip" data-bs-title="Aufgabe nicht für diese Benutzergruppe" style="cursor: help;"><i class="bi bi-x-lg text-danger"></i></a></div></td>{{else if eq .Kind 1}}<td class="text-center p-0 rounded-4"><div class="p-0 m-0"><form method="post" action="{{.URLs.Assign}}" class="d-inline">{{template "csrf" .CSRF}}<input type="hidden" name="next" value="{{.Next}}"><input type="hidden" name="user_id" value="{{.User.ID}}"><input type="hidden" name="aufgabe_id" value="{{.Aufgabe.ID}}"><button type="submit" class="btn btn-sm" data-tooltip="Aufgabe zuweisen"><i class="bi bi-plus-circle"></i></button></form></div></td>{{else}}<td class="text-center p-0 rounded-4 {{.BgClass}}" id="task-table-row-{{.UA.ID}}" data-task-id="{{.UA.ID}}" data-state="{{.State}}">{{template "completed" .}}{{template "pending" .}}{{template "upcoming" .}}</td>{{end}}{{end}}

{{define "taskHeader"}}<th class="text-center bg-white p-1 sticky-top border-end" style="box-shadow: 2px 2px 0 0 #dee2e6;"><div class="d-flex gap-1 align-items-center justify-content-center">{{if or .Aufgabe.Beschreibung .Aufgabe.MitUpload .Aufgabe.Wiederholung}}<div class="d-flex gap-0 align-items-center flex-column">{{if .Aufgabe.Beschreibung}}<span class="hovercard"><a class="btn p-0 label" data-bs-toggle="tooltip" data-bs-title="Beschreibung: {{.Aufgabe.Beschreibung}}"><i class="bi bi-info-circle"></i></a><span class="card notes-content">{{markdown .Aufgabe.Beschreibung}}</span></span>{{end}}{{if .Aufgabe.MitUpload}}<a class="btn p-0" data-bs-toggle="tooltip" data-bs-title="Diese Aufgabe erfordert eine Datei"><i class="bi bi-file-earmark-arrow-up text-success"></i></a>{{end}}{{if .Aufgabe.Wiederholung}}<a class="btn p-0" data-bs-toggle="tooltip" data-bs-title="Mit Wiederholung"><i class="bi bi-repeat"></i></a>{{end}}</div>{{end}}<div class="dropdown d-inline"><button class="btn btn-sm dropdown-toggle p-0 d-flex align-items-center" type="button" data-bs-toggle="dropdown" aria-expanded="false"><p class="text-wrap m-0">{{.Aufgabe.Name}}</p></button><ul class="dropdown-menu z-1020"><li><a href="{{buildURLNext .URLs.EditAufgabe .Aufgabe.ID .URLs.ListTable}}" class="dropdown-item"><i class="bi bi-pencil me-2"></i> Bearbeiten</a></li>{{if .Countries}}<li><form method="post" action="{{.URLs.AssignCountry}}" class="dropdown-item d-flex gap-1 m-0">{{template "csrf" .CSRF}}<input type="hidden" name="next" value="{{.Next}}"><input type="hidden" name="aufgabe_id" value="{{.Aufgabe.ID}}"><i class="bi bi-globe-americas me-1"></i><select name="country_id" class="form-select form-select-sm" aria-label="Einsatzland">{{range .Countries}}<option value="{{.ID}}">{{.Name}}</option>{{end}}</select><button type="submit" class="btn btn-sm btn-outline-secondary">Einem Einsatzland zuweisen</button></form></li>{{end}}<li><form method="post" action="{{.URLs.AssignAll}}" class="m-0">{{template "csrf" .CSRF}}<input type="hidden" name="next" value="{{.Next}}"><input type="hidden" name="aufgabe_id" value="{{.Aufgabe.ID}}"><input type="hidden" name="person_cluster" value="{{.Cluster}}"><button type="submit" class="dropdown-item"><i class="bi bi-people-fill me-2"></i> Allen zuweisen</button></form></li></ul></div></div></th>{{end}}

{{define "header"}}<tr><th class="sticky-right p-1 align-bottom z-1000" style="min-width:200px; position: sticky; left: 0; top: 0; box-shadow: 2px 2px 0 0 #dee2e6;"><div class="input-group gap-0 rounded-pill border shadow-sm bg-white align-items-center" style="min-width: 150px;"><span class="input-group-text bg-transparent border-0 pe-0" style="font-size:1.1em;"><i class="bi bi-search text-secondary"></i></span><input id="userSearch" type="text" class="form-control border-0 bg-white px-1" style="min-width:80px; font-size: 1em; box-shadow: none;" placeholder="Suchen..." autocomplete="off" value="{{.Query}}" data-row-filter="#aufgaben-table tbody tr[data-search-term]"><button class="btn btn-link text-decoration-none ps-0" type="button" tabindex="-1" aria-label="Suche zurücksetzen" data-reset-search="userSearch"><i class="bi bi-x-circle text-danger" style="font-size:1.2em;"></i></button></div></th>{{range .Headers}}{{template "taskHeader" .}}{{end}}<th class="p-0 sticky-right with-border-before" style="box-shadow: 2px 2px 0 0 #dee2e6;"><div class="d-flex gap-1 align-items-center"><a href="{{withNext .URLs.AddAufgabe .URLs.ListTable}}" class="btn px-4" data-bs-toggle="tooltip" data-bs-title="Neue Aufgabe erstellen"><i class="bi bi-plus-circle"></i></a></div></th></tr>{{end}}

{{define "row"}}<tr class="border-bottom{{if .Hidden}} d-none{{end}}" data-search-term="{{.SearchKey}}" data-user-id="{{.User.ID}}"><th class="p-0 ps-2" style="max-width: 30vw; height: 50px; box-shadow: 2px 2px 0 0 #dee2e6;"><div class="d-flex gap-1 align-items-center justify-content-between">{{.User.DisplayName}}</div></th>{{range .Cells}}{{template "cell" .}}{{end}}<td class="text-center p-0 rounded-4"></td></tr>{{end}}

{{define "table"}}<div class="table-responsive" id="aufgaben-table" data-today="{{.Today}}" data-person-cluster="{{.Cluster}}"><table class="table mb-0 align-middle table-borderless"><thead>{{template "header" .}}</thead><tbody>{{range .Rows}}{{template "row" .}}{{end}}<tr class="h-100"></tr></tbody></table></div>{{end}}

{{define "substeps"}}<div class="substeps" data-user-aufgabe-id="{{.TaskID}}"><h5>{{.TaskName}} - {{.UserName}}</h5><ul class="list-group">{{if not .Steps}}<li class="list-group-item">Keine Zwischenschritte definiert</li>{{else}}{{range .Steps}}<li class="list-group-item d-flex justify-content-between align-items-center"><div><strong>{{.Name}}</strong>{{if .Beschreibung}}<div class="mb-0 small text-muted">{{markdown .Beschreibung}}</div>{{end}}</div><div class="form-check form-switch"><input class="form-check-input" type="checkbox" data-task-id="{{$.TaskID}}" data-step-id="{{.ID}}" data-toggle-url="{{.ToggleURL}}"{{if .Erledigt}} checked{{end}}></div></li>{{end}}{{end}}</ul></div>{{end}}
`))
