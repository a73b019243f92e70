// Package tui 是 epren 的全屏交互界面（Bubble Tea）。
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/John-Robertt/EpRen/internal/app/run"
	"github.com/John-Robertt/EpRen/internal/config"
	"github.com/John-Robertt/EpRen/internal/domain"
	"github.com/John-Robertt/EpRen/internal/provider"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State 是界面状态机的当前状态。
type State int

const (
	StateInput State = iota
	StatePlanning
	StateReview
	StateRenaming
	StateDone
	StateError
)

// 输入表单的字段顺序（tab/enter 依次切换）。
const (
	fieldPath = iota
	fieldSeason
	fieldYear
	fieldIMDb
	fieldCount
)

// Message types
type (
	// PlanDoneMsg 在 dry-run 规划（含可选的集标题查询）完成后发出。
	PlanDoneMsg struct {
		Eff    config.EffectiveConfig
		Report domain.RunReport
		Err    error
	}

	// ApplyDoneMsg 在重命名执行完成后发出。
	ApplyDoneMsg struct {
		Report domain.RunReport
	}
)

// Model 是 Bubble Tea 模型。所有流程复用 run.Execute：
// review 之前先跑一轮 dry-run，确认后再以 apply 重跑。
type Model struct {
	state   State
	inputs  []textinput.Model
	focused int
	movie   bool

	spinner spinner.Model

	reg provider.Registry

	eff    config.EffectiveConfig
	plan   domain.RunReport
	result domain.RunReport
	err    error

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
}

// NewModel 构造初始模型；initialPath 非空时预填目录字段。
func NewModel(initialPath string, reg provider.Registry) Model {
	inputs := make([]textinput.Model, fieldCount)

	path := textinput.New()
	path.Placeholder = "/媒体库/Show/Season 2"
	path.CharLimit = 500
	path.Width = 60
	path.SetValue(initialPath)
	path.Focus()
	inputs[fieldPath] = path

	season := textinput.New()
	season.Placeholder = "S02（留空则从目录名推断）"
	season.CharLimit = 8
	season.Width = 30
	inputs[fieldSeason] = season

	year := textinput.New()
	year.Placeholder = "2022（可选）"
	year.CharLimit = 4
	year.Width = 30
	inputs[fieldYear] = year

	imdbID := textinput.New()
	imdbID.Placeholder = "tt0944947（可选：用 IMDb 集标题）"
	imdbID.CharLimit = 12
	imdbID.Width = 40
	inputs[fieldIMDb] = imdbID

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:   StateInput,
		inputs:  inputs,
		spinner: sp,
		reg:     reg,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateReview:
				// 回到表单改参数，不丢已填内容。
				m.state = StateInput
				return m, nil
			case StateDone, StateError:
				return m, tea.Quit
			}

		case "tab", "shift+tab", "up", "down":
			if m.state == StateInput {
				if msg.String() == "shift+tab" || msg.String() == "up" {
					m.focused--
				} else {
					m.focused++
				}
				m.focused = (m.focused + fieldCount) % fieldCount
				for i := range m.inputs {
					if i == m.focused {
						m.inputs[i].Focus()
					} else {
						m.inputs[i].Blur()
					}
				}
				return m, nil
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.movie = !m.movie
				return m, nil
			}

		case "enter":
			switch m.state {
			case StateInput:
				if m.focused < fieldCount-1 {
					// 逐字段下移；最后一个字段上的 enter 才提交。
					m.focused++
					for i := range m.inputs {
						if i == m.focused {
							m.inputs[i].Focus()
						} else {
							m.inputs[i].Blur()
						}
					}
					return m, nil
				}
				eff, err := m.buildEffective()
				if err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.eff = eff
				m.state = StatePlanning
				return m, tea.Batch(m.planCmd(eff), m.spinner.Tick)
			case StateReview:
				if len(planEntries(m.plan)) == 0 {
					return m, nil
				}
				m.state = StateRenaming
				return m, tea.Batch(m.applyCmd(), m.spinner.Tick)
			case StateDone, StateError:
				return m, tea.Quit
			}

		case "y":
			if m.state == StateReview && len(planEntries(m.plan)) > 0 {
				m.state = StateRenaming
				return m, tea.Batch(m.applyCmd(), m.spinner.Tick)
			}

		case "n":
			if m.state == StateReview {
				m.state = StateInput
				return m, nil
			}

		case "q":
			if m.state == StateDone || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case PlanDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.eff = msg.Eff
			m.plan = msg.Report
			m.state = StateReview
		}

	case ApplyDoneMsg:
		m.result = msg.Report
		m.state = StateDone
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// buildEffective 把表单内容走一遍与 CLI 完全相同的合并/校验。
func (m Model) buildEffective() (config.EffectiveConfig, error) {
	path := strings.TrimSpace(m.inputs[fieldPath].Value())
	if path == "" {
		return config.EffectiveConfig{}, fmt.Errorf("目录不能为空")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, err
	}

	mt := string(domain.MediaTV)
	if m.movie {
		mt = string(domain.MediaMovie)
	}
	season := strings.TrimSpace(m.inputs[fieldSeason].Value())
	year := strings.TrimSpace(m.inputs[fieldYear].Value())
	imdbID := strings.TrimSpace(m.inputs[fieldIMDb].Value())

	return config.LoadEffective(cwd, config.CLIArgs{
		Path:         path,
		Season:       season,
		SeasonSet:    season != "",
		Year:         year,
		YearSet:      year != "",
		IMDbID:       imdbID,
		IMDbIDSet:    imdbID != "",
		MediaType:    mt,
		MediaTypeSet: true,
	})
}

func (m Model) planCmd(eff config.EffectiveConfig) tea.Cmd {
	ctx := m.ctx
	reg := m.reg
	return func() tea.Msg {
		eff.Apply = false
		rr := run.Execute(ctx, eff, reg, nil, nil)
		return PlanDoneMsg{Eff: eff, Report: rr}
	}
}

func (m Model) applyCmd() tea.Cmd {
	ctx := m.ctx
	reg := m.reg
	eff := m.eff
	return func() tea.Msg {
		// review 环节就是确认；这里直接放行（nil Confirmer 视为同意）。
		eff.Apply = true
		rr := run.Execute(ctx, eff, reg, nil, nil)
		return ApplyDoneMsg{Report: rr}
	}
}

func planEntries(rr domain.RunReport) []domain.ItemResult {
	out := make([]domain.ItemResult, 0, len(rr.Items))
	for _, it := range rr.Items {
		if it.Status == domain.StatusPlanned {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("EpRen"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("批量剧集重命名"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePlanning:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("扫描目录、查询集标题…"))
		b.WriteString("\n")
	case StateReview:
		b.WriteString(m.viewReview())
	case StateRenaming:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("正在重命名…"))
		b.WriteString("\n")
	case StateDone:
		b.WriteString(m.viewDone())
	case StateError:
		b.WriteString(errorStyle.Render("出错了："))
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString("  " + m.err.Error())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldCount]string{"目录", "季号", "年份", "IMDb ID"}
	for i, in := range m.inputs {
		cursor := "  "
		if i == m.focused {
			cursor = subtitleStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, infoStyle.Render(labels[i])))
		b.WriteString("  " + in.View())
		b.WriteString("\n\n")
	}

	movieCheck := "[ ]"
	if m.movie {
		movieCheck = "[×]"
	}
	b.WriteString(fmt.Sprintf("  %s 电影模式（ctrl+t）\n", movieCheck))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewReview() string {
	var b strings.Builder

	entries := planEntries(m.plan)
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("计划（%s，共 %d 条）：", m.plan.Pass, len(entries))))
	b.WriteString("\n\n")
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  没有需要重命名的文件。"))
		b.WriteString("\n")
	}
	for _, it := range entries {
		b.WriteString(fmt.Sprintf("  %s %s\n", it.Old, dimStyle.Render("->")))
		b.WriteString(successStyle.Render("    " + it.New))
		b.WriteString("\n")
	}

	if m.plan.LookupError != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  集标题查询失败，已回退到文件名派生"))
		b.WriteString("\n")
	}

	var skipped, unmatched []string
	for _, it := range m.plan.Items {
		switch it.Status {
		case domain.StatusSkipped:
			skipped = append(skipped, it.Old)
		case domain.StatusUnmatched:
			unmatched = append(unmatched, fmt.Sprintf("%s (%s)", it.Old, it.ErrorCode))
		}
	}
	if len(skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  已是目标形态：%d 个", len(skipped))))
		b.WriteString("\n")
	}
	if len(unmatched) > 0 {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  未匹配："))
		b.WriteString("\n")
		for _, u := range unmatched {
			b.WriteString(warningStyle.Render("    " + u))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) viewDone() string {
	var b strings.Builder

	s := m.result.Summary
	box := boxStyle.Render(fmt.Sprintf(
		"完成\n\n重命名：%d\n跳过：%d\n失败：%d\n未匹配：%d",
		s.Renamed, s.Skipped, s.Failed, s.Unmatched,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	for _, it := range m.result.Items {
		switch it.Status {
		case domain.StatusRenamed:
			b.WriteString(successStyle.Render(fmt.Sprintf("  ✓ %s -> %s", it.Old, it.New)))
			b.WriteString("\n")
		case domain.StatusFailed:
			b.WriteString(errorStyle.Render(fmt.Sprintf("  ✗ %s %s: %s", it.Old, it.ErrorCode, it.ErrorMsg)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: 下一项/开始 • tab: 切换字段 • ctrl+t: 电影模式 • esc: 退出"
	case StatePlanning, StateRenaming:
		return "ctrl+c: 取消"
	case StateReview:
		return "y/enter: 执行重命名 • n/esc: 返回修改"
	case StateDone, StateError:
		return "q/enter: 退出"
	}
	return ""
}

// Run 启动全屏界面。
func Run(initialPath string, reg provider.Registry) error {
	p := tea.NewProgram(NewModel(initialPath, reg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
