package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"taskBoard/internal/client"
	"taskBoard/internal/client/store"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"github.com/google/uuid"
)

// taskctl - тонкий консольный потребитель клиентского ядра.
// Слой представления; вся работа с данными в internal/client.

const usage = `использование: taskctl <команда> [аргументы]

команды:
  list [-status STATUS] [-sort FIELD] [-order asc|desc]
  add <title> [-due RFC3339] [-comments TEXT]
  show <id>
  update <id> [-title T] [-status S] [-due RFC3339] [-comments TEXT]
  done <id>
  rm <id>

адрес бэкенда берётся из TASKBOARD_API_URL (по умолчанию ` + client.DefaultBaseURL + `)`

func main() {
	if err := logger.Init(false); err != nil {
		fmt.Fprintln(os.Stderr, "ошибка логгера:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	svc := client.NewTaskService(client.NewFromEnv(), client.DefaultCacheTTL)
	st := store.New()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(ctx, svc, st, os.Args[2:])
	case "add":
		err = runAdd(ctx, svc, st, os.Args[2:])
	case "show":
		err = runShow(ctx, svc, os.Args[2:])
	case "update":
		err = runUpdate(ctx, svc, st, os.Args[2:])
	case "done":
		err = runDone(ctx, svc, st, os.Args[2:])
	case "rm":
		err = runRemove(ctx, svc, st, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда: %s\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "ошибка:", err)
		os.Exit(1)
	}
}

func runList(ctx context.Context, svc *client.TaskService, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "фильтр по статусу")
	sortBy := fs.String("sort", "", "поле сортировки")
	order := fs.String("order", "", "направление сортировки")
	fs.Parse(args)

	st.Dispatch(store.SetLoading{Loading: true})

	var tasks []*task.Task
	var err error
	if *status != "" || *sortBy != "" || *order != "" {
		var statusFilter *task.Status
		if *status != "" {
			s := task.Status(*status)
			statusFilter = &s
		}
		tasks, err = svc.FilterTasks(ctx, statusFilter, *sortBy, *order)
	} else {
		tasks, err = svc.GetTasks(ctx, false)
	}

	if err != nil {
		st.Dispatch(store.SetError{Message: err.Error()})
		return err
	}

	st.Dispatch(store.SetTasks{Tasks: tasks})
	printState(st.State())
	return nil
}

func runAdd(ctx context.Context, svc *client.TaskService, st *store.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("add: требуется название задачи")
	}
	title := args[0]

	fs := flag.NewFlagSet("add", flag.ExitOnError)
	due := fs.String("due", "", "дедлайн в формате RFC3339")
	comments := fs.String("comments", "", "комментарий")
	fs.Parse(args[1:])

	// локальная валидация до любого сетевого вызова
	if err := task.ValidateTitle(title); err != nil {
		return err
	}

	req := dto.CreateTaskRequest{Title: title}
	if *due != "" {
		dueTime, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("неверный формат дедлайна: %w", err)
		}
		req.DueDate = &dueTime
	}
	req.Comments = task.NormalizeComments(comments)
	if err := task.ValidateComments(req.Comments); err != nil {
		return err
	}

	created, err := svc.CreateTask(ctx, req)
	if err != nil {
		st.Dispatch(store.SetError{Message: err.Error()})
		return err
	}

	st.Dispatch(store.AddTask{Task: created})
	fmt.Printf("создана задача %s\n", created.ID)
	return nil
}

func runShow(ctx context.Context, svc *client.TaskService, args []string) error {
	id, err := parseID("show", args)
	if err != nil {
		return err
	}

	t, err := svc.GetTask(ctx, id)
	if err != nil {
		return err
	}
	printTask(t)
	return nil
}

func runUpdate(ctx context.Context, svc *client.TaskService, st *store.Store, args []string) error {
	id, err := parseID("update", args)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("update", flag.ExitOnError)
	title := fs.String("title", "", "новое название")
	status := fs.String("status", "", "новый статус")
	due := fs.String("due", "", "новый дедлайн в формате RFC3339")
	comments := fs.String("comments", "", "новый комментарий")
	fs.Parse(args[1:])

	req := dto.UpdateTaskRequest{}
	if *title != "" {
		if err := task.ValidateTitle(*title); err != nil {
			return err
		}
		req.Title = title
	}
	if *status != "" {
		s := task.Status(*status)
		if !s.Valid() {
			return fmt.Errorf("недопустимый статус '%s', ожидается один из %v", *status, task.Statuses())
		}
		req.Status = &s
	}
	if *due != "" {
		dueTime, err := time.Parse(time.RFC3339, *due)
		if err != nil {
			return fmt.Errorf("неверный формат дедлайна: %w", err)
		}
		req.DueDate = &dueTime
	}
	if *comments != "" {
		if err := task.ValidateComments(comments); err != nil {
			return err
		}
		req.Comments = comments
	}

	updated, err := svc.UpdateTask(ctx, id, req)
	if err != nil {
		st.Dispatch(store.SetError{Message: err.Error()})
		return err
	}

	st.Dispatch(store.UpdateTask{Task: updated})
	printTask(updated)
	return nil
}

func runDone(ctx context.Context, svc *client.TaskService, st *store.Store, args []string) error {
	id, err := parseID("done", args)
	if err != nil {
		return err
	}

	closed := task.StatusClosed
	updated, err := svc.UpdateTask(ctx, id, dto.UpdateTaskRequest{Status: &closed})
	if err != nil {
		st.Dispatch(store.SetError{Message: err.Error()})
		return err
	}

	st.Dispatch(store.UpdateTask{Task: updated})
	fmt.Printf("задача %s закрыта\n", updated.ID)
	return nil
}

func runRemove(ctx context.Context, svc *client.TaskService, st *store.Store, args []string) error {
	id, err := parseID("rm", args)
	if err != nil {
		return err
	}

	ack, err := svc.DeleteTask(ctx, id)
	if err != nil {
		st.Dispatch(store.SetError{Message: err.Error()})
		return err
	}

	st.Dispatch(store.DeleteTask{ID: id})
	fmt.Println(ack.Message)
	return nil
}

func parseID(command string, args []string) (uuid.UUID, error) {
	if len(args) < 1 {
		return uuid.Nil, fmt.Errorf("%s: требуется id задачи", command)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("неверный id: %w", err)
	}
	return id, nil
}

func printState(s store.State) {
	if len(s.Tasks) == 0 {
		fmt.Println("задач нет")
		return
	}
	for _, t := range s.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Printf("%s  %-12s  %-10s  %s\n", t.ID, t.Status, due, t.Title)
	}
}

func printTask(t *task.Task) {
	fmt.Printf("id:         %s\n", t.ID)
	fmt.Printf("название:   %s\n", t.Title)
	fmt.Printf("статус:     %s\n", t.Status)
	if t.DueDate != nil {
		fmt.Printf("дедлайн:    %s\n", t.DueDate.Format(time.RFC3339))
	}
	if t.Comments != nil {
		fmt.Printf("комментарий: %s\n", *t.Comments)
	}
	fmt.Printf("создана:    %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Printf("обновлена:  %s\n", t.UpdatedAt.Format(time.RFC3339))
}
