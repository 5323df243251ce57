package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/tqt95/app-react-jpa/internal"
	"github.com/tqt95/app-react-jpa/internal/cache"
	"github.com/tqt95/app-react-jpa/internal/client"
	"github.com/tqt95/app-react-jpa/internal/data"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	envs := internal.Envs(os.Environ())
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func employeeFromEnvs(envs map[string]string) (data.Employee, error) {
	var employee data.Employee

	s := envs["EMPLOYEE"]
	if s == "" {
		return employee, errors.New("EMPLOYEE not provided")
	}
	if err := json.Unmarshal([]byte(s), &employee); err != nil {
		return employee, errors.Wrap(err, "invalid EMPLOYEE")
	}
	return employee, nil
}

func Main(envs map[string]string, osSignal chan os.Signal) error {
	fmt.Printf("client: employees v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()

	//create cache, only redis outlives a single command
	var parameters []any
	if envs["CACHE_TYPE"] == "redis" {
		cache := cache.NewRedis()
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				fmt.Printf("error while closing cache: %s\n", err)
			}
		}()
		parameters = append(parameters, cache)
	}

	//create client
	client := client.NewClient(parameters...)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// execute command
	ctx = internal.CtxWithCorrelationId(ctx, internal.GenerateId())
	id, _ := strconv.ParseInt(envs["EMPLOYEE_ID"], 10, 64)
	switch command := envs["COMMAND"]; command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_read":
		employees, err := client.EmployeesRead(ctx)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		employee, err := client.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employees_by_department":
		employees, err := client.EmployeesByDepartment(ctx, envs["DEPARTMENT"])
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employees_by_last_name":
		employees, err := client.EmployeesByLastName(ctx, envs["LAST_NAME"])
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employees_by_min_salary":
		minSalary, err := decimal.NewFromString(envs["MIN_SALARY"])
		if err != nil {
			return errors.Wrap(err, "invalid MIN_SALARY")
		}
		employees, err := client.EmployeesByMinSalary(ctx, minSalary)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employees_hired_in_year":
		year, err := strconv.Atoi(envs["YEAR"])
		if err != nil {
			return errors.Wrap(err, "invalid YEAR")
		}
		employees, err := client.EmployeesHiredInYear(ctx, year)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_create":
		employee, err := employeeFromEnvs(envs)
		if err != nil {
			return err
		}
		employeeCreated, err := client.EmployeeCreate(ctx, employee)
		if err != nil {
			return err
		}
		return printJson(employeeCreated)
	case "employee_update":
		employee, err := employeeFromEnvs(envs)
		if err != nil {
			return err
		}
		employeeUpdated, err := client.EmployeeUpdate(ctx, id, employee)
		if err != nil {
			return err
		}
		return printJson(employeeUpdated)
	case "employee_delete":
		if err := client.EmployeeDelete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted employee: %d\n", id)
	case "cache_clear":
		return client.CacheClear(ctx)
	case "health":
		health, err := client.Health(ctx)
		if err != nil {
			return err
		}
		return printJson(health)
	}
	return nil
}
