package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vaccine-scheduler-api/internal/auth"
	"vaccine-scheduler-api/internal/model"
	"vaccine-scheduler-api/internal/schedule"
)

// dates are tokens in MM-DD-YYYY form
const dateLayout = "01-02-2006"

// Service is what the command loop needs from the scheduler.
type Service interface {
	Register(ctx context.Context, username, password string, role model.Role) error
	Login(ctx context.Context, username, password string, role model.Role) (string, error)
	Reserve(ctx context.Context, patient string, day time.Time, vaccine string) (*schedule.Confirmation, error)
	Schedule(ctx context.Context, day time.Time) (*schedule.DaySchedule, error)
	UploadAvailability(ctx context.Context, caregiver string, day time.Time) error
	AddDoses(ctx context.Context, vaccine string, amount int) (int, error)
	Appointments(ctx context.Context, username string, role model.Role) ([]model.Appointment, error)
}

// CLI reads whitespace-tokenized commands from in and writes replies to
// out. At most one identity is logged in at a time; the session is a
// signed token resolved per command, never ambient state.
type CLI struct {
	svc     Service
	secret  string
	limiter *loginLimiter
	in      io.Reader
	out     io.Writer
	log     zerolog.Logger

	token string
}

func New(svc Service, secret string, in io.Reader, out io.Writer, log zerolog.Logger) *CLI {
	return &CLI{
		svc:     svc,
		secret:  secret,
		limiter: newLoginLimiter(1, 5),
		in:      in,
		out:     out,
		log:     log,
	}
}

const menu = `
 *** Please enter one of the following commands ***
> create_patient <username> <password>
> create_caregiver <username> <password>
> login_patient <username> <password>
> login_caregiver <username> <password>
> search_caregiver_schedule <date>
> reserve <date> <vaccine>
> upload_availability <date>
> cancel <appointment_id>
> add_doses <vaccine> <number>
> show_appointments
> logout
> quit
`

// Run loops until quit, EOF, or ctx cancellation.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "Welcome to the COVID-19 Vaccine Reservation Scheduling Application!")
	fmt.Fprint(c.out, menu)

	sc := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "quit" {
			fmt.Fprintln(c.out, "Bye!")
			return nil
		}
		c.dispatch(ctx, tokens)
	}
}

func (c *CLI) dispatch(ctx context.Context, tokens []string) {
	switch tokens[0] {
	case "create_patient":
		c.createIdentity(ctx, tokens, model.RolePatient)
	case "create_caregiver":
		c.createIdentity(ctx, tokens, model.RoleCaregiver)
	case "login_patient":
		c.login(ctx, tokens, model.RolePatient)
	case "login_caregiver":
		c.login(ctx, tokens, model.RoleCaregiver)
	case "search_caregiver_schedule":
		c.searchSchedule(ctx, tokens)
	case "reserve":
		c.reserve(ctx, tokens)
	case "upload_availability":
		c.uploadAvailability(ctx, tokens)
	case "cancel":
		fmt.Fprintln(c.out, "Cancellation is not supported.")
	case "add_doses":
		c.addDoses(ctx, tokens)
	case "show_appointments":
		c.showAppointments(ctx, tokens)
	case "logout":
		c.logout(tokens)
	default:
		fmt.Fprintln(c.out, "Invalid operation name!")
	}
}

// current resolves the logged-in identity from the session token, if any.
// An expired token counts as logged out.
func (c *CLI) current() *auth.Claims {
	if c.token == "" {
		return nil
	}
	claims, err := auth.ParseToken(c.token, c.secret)
	if err != nil {
		c.token = ""
		return nil
	}
	return claims
}

func (c *CLI) createIdentity(ctx context.Context, tokens []string, role model.Role) {
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Failed to create user.")
		return
	}
	username, password := tokens[1], tokens[2]
	if !c.limiter.allow(username) {
		fmt.Fprintln(c.out, "Too many attempts, please wait and try again.")
		return
	}

	err := c.svc.Register(ctx, username, password, role)
	switch {
	case errors.Is(err, schedule.ErrUsernameTaken):
		fmt.Fprintln(c.out, "Username taken, try again!")
	case errors.Is(err, schedule.ErrStorage):
		c.log.Error().Err(err).Msg("create user failed")
		fmt.Fprintln(c.out, "Failed to create user.")
	case err != nil:
		fmt.Fprintln(c.out, err)
	default:
		fmt.Fprintln(c.out, "Created user", username)
	}
}

func (c *CLI) login(ctx context.Context, tokens []string, role model.Role) {
	if c.current() != nil {
		fmt.Fprintln(c.out, "User already logged in.")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Login failed.")
		return
	}
	username, password := tokens[1], tokens[2]
	if !c.limiter.allow(username) {
		fmt.Fprintln(c.out, "Too many attempts, please wait and try again.")
		return
	}

	tok, err := c.svc.Login(ctx, username, password, role)
	if err != nil {
		if errors.Is(err, schedule.ErrStorage) {
			c.log.Error().Err(err).Msg("login failed")
		}
		fmt.Fprintln(c.out, "Login failed.")
		return
	}
	c.token = tok
	fmt.Fprintln(c.out, "Logged in as:", username)
}

func (c *CLI) searchSchedule(ctx context.Context, tokens []string) {
	if c.current() == nil {
		fmt.Fprintln(c.out, "Please login first!")
		return
	}
	if len(tokens) != 2 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	day, err := time.Parse(dateLayout, tokens[1])
	if err != nil {
		fmt.Fprintln(c.out, "Please enter a valid date!")
		return
	}

	sched, err := c.svc.Schedule(ctx, day)
	if err != nil {
		c.log.Error().Err(err).Msg("schedule search failed")
		fmt.Fprintln(c.out, "Error occurred when checking date")
		return
	}
	for _, name := range sched.Caregivers {
		fmt.Fprintln(c.out, name)
	}
	for _, v := range sched.Vaccines {
		fmt.Fprintln(c.out, v.Name, v.Doses)
	}
}

func (c *CLI) reserve(ctx context.Context, tokens []string) {
	claims := c.current()
	if claims == nil {
		fmt.Fprintln(c.out, "Please login first!")
		return
	}
	if claims.Role != model.RolePatient {
		fmt.Fprintln(c.out, "Please login as a patient!")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	day, err := time.Parse(dateLayout, tokens[1])
	if err != nil {
		fmt.Fprintln(c.out, "Please enter a valid date!")
		return
	}

	conf, err := c.svc.Reserve(ctx, claims.Username, day, tokens[2])
	switch {
	case errors.Is(err, schedule.ErrInsufficientDoses):
		fmt.Fprintln(c.out, "Not enough available doses!")
	case errors.Is(err, schedule.ErrNoCaregiverAvailable):
		fmt.Fprintln(c.out, "No Caregiver is available!")
	case err != nil:
		c.log.Error().Err(err).Msg("reservation failed")
		fmt.Fprintln(c.out, "Error occurred when making reservation")
	default:
		fmt.Fprintf(c.out, "Appointment ID: %d, Caregiver username: %s\n",
			conf.AppointmentID, conf.Caregiver)
	}
}

func (c *CLI) uploadAvailability(ctx context.Context, tokens []string) {
	claims := c.current()
	if claims == nil || claims.Role != model.RoleCaregiver {
		fmt.Fprintln(c.out, "Please login as a caregiver first!")
		return
	}
	if len(tokens) != 2 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	day, err := time.Parse(dateLayout, tokens[1])
	if err != nil {
		fmt.Fprintln(c.out, "Please enter a valid date!")
		return
	}

	err = c.svc.UploadAvailability(ctx, claims.Username, day)
	switch {
	case errors.Is(err, schedule.ErrDuplicateSlot):
		fmt.Fprintln(c.out, "Availability already uploaded for that date!")
	case err != nil:
		c.log.Error().Err(err).Msg("upload availability failed")
		fmt.Fprintln(c.out, "Upload Availability Failed")
	default:
		fmt.Fprintln(c.out, "Availability uploaded!")
	}
}

func (c *CLI) addDoses(ctx context.Context, tokens []string) {
	claims := c.current()
	if claims == nil || claims.Role != model.RoleCaregiver {
		fmt.Fprintln(c.out, "Please login as a caregiver first!")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	amount, err := strconv.Atoi(tokens[2])
	if err != nil {
		fmt.Fprintln(c.out, "Please enter a valid number!")
		return
	}

	_, err = c.svc.AddDoses(ctx, tokens[1], amount)
	switch {
	case errors.Is(err, schedule.ErrInvalidAmount):
		fmt.Fprintln(c.out, "Please enter a positive number of doses!")
	case err != nil:
		c.log.Error().Err(err).Msg("add doses failed")
		fmt.Fprintln(c.out, "Error occurred when adding doses")
	default:
		fmt.Fprintln(c.out, "Doses updated!")
	}
}

func (c *CLI) showAppointments(ctx context.Context, tokens []string) {
	if len(tokens) != 1 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	claims := c.current()
	if claims == nil {
		fmt.Fprintln(c.out, "Please login first!")
		return
	}

	appts, err := c.svc.Appointments(ctx, claims.Username, claims.Role)
	if err != nil {
		c.log.Error().Err(err).Msg("show appointments failed")
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	if len(appts) == 0 {
		fmt.Fprintln(c.out, "No scheduled appointments.")
		return
	}
	for _, a := range appts {
		// patients see the caregiver, caregivers see the patient
		other := a.Caregiver
		if claims.Role == model.RoleCaregiver {
			other = a.Patient
		}
		fmt.Fprintln(c.out, a.ID, a.Vaccine, a.Day.Format(dateLayout), other)
	}
}

func (c *CLI) logout(tokens []string) {
	if len(tokens) != 1 {
		fmt.Fprintln(c.out, "Please try again!")
		return
	}
	if c.current() == nil {
		fmt.Fprintln(c.out, "Please login first.")
		return
	}
	c.token = ""
	fmt.Fprintln(c.out, "Successfully logged out!")
}
