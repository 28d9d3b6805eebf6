package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	chaninfo "github.com/next-exp/chaninfo_go/pkg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	_ "modernc.org/sqlite"
)

var (
	logger         chaninfo.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = chaninfo.NewSlogLogger(os.Stdout, os.Stderr)
}

type lookupRequest struct {
	channel      chaninfo.ChannelId
	geometry     chaninfo.GeometryId
	wire         int
	findWire     bool
	findChannel  bool
	findGeometry bool
	findASIC     bool
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: channelLookup [-config file] <input option> <output option>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "     -C : Translate from electronics <crate>-<card>-<chan>")
	fmt.Fprintln(out, "     -G : Translate from geometry [uvx]-number")
	fmt.Fprintln(out, "     -W : Translate from tpc wire")
	fmt.Fprintln(out, "     -c : Translate to electronics <crate>-<card>-<chan>")
	fmt.Fprintln(out, "     -g : Translate to geometry")
	fmt.Fprintln(out, "     -w : Translate to wire")
	fmt.Fprintln(out, "     -a : Translate to asic")
	fmt.Fprintln(out, "     -export : Write the channel map of the run to an HDF5 file")
	fmt.Fprintln(out, "     -init-db : Create the channel map tables in the configured database")
	fmt.Fprintln(out, "     -metrics : Print the lookup counters on exit")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	flags := flag.NewFlagSet("channelLookup", flag.ContinueOnError)
	flags.SetOutput(out)
	flags.Usage = func() { usage(out) }
	configFilename := flags.String("config", "", "Configuration file path")
	runNumber := flags.Int("run", -1, "Run number (default from configuration)")
	eventNumber := flags.Int("event", -1, "Event number (default from configuration)")
	partitionName := flags.String("partition", "", "mc, captain or minicaptain (default from configuration)")
	channelStr := flags.String("C", "", "Electronics channel <crate>-<card>-<chan>")
	geometryStr := flags.String("G", "", "Geometry [uvx]-<wire>")
	wire := flags.Int("W", -1, "TPC wire number")
	findASIC := flags.Bool("a", false, "Translate to asic")
	findChannel := flags.Bool("c", false, "Translate to electronics channel")
	findGeometry := flags.Bool("g", false, "Translate to geometry")
	findWire := flags.Bool("w", false, "Translate to wire")
	exportFile := flags.String("export", "", "HDF5 output file for the channel map")
	initDB := flags.Bool("init-db", false, "Create the channel map tables and exit")
	printMetrics := flags.Bool("metrics", false, "Print the lookup counters on exit")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return -1
	}

	configuration, err := LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return -1
	}
	if *runNumber >= 0 {
		configuration.Run = *runNumber
	}
	if *eventNumber >= 0 {
		configuration.Event = *eventNumber
	}
	if *partitionName != "" {
		configuration.Partition = *partitionName
	}
	if *exportFile != "" {
		configuration.FileOut = *exportFile
	}
	chaninfo.SetConfiguration(configuration)
	chaninfo.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		printConfiguration(configuration, logger)
	}

	request := lookupRequest{
		wire:         *wire,
		findWire:     *findWire,
		findChannel:  *findChannel,
		findGeometry: *findGeometry,
		findASIC:     *findASIC,
	}
	if *channelStr != "" {
		request.channel, err = chaninfo.ParseTPCChannelId(*channelStr)
		if err != nil {
			logger.Error(err.Error())
			return -1
		}
	}
	if *geometryStr != "" {
		request.geometry, err = chaninfo.ParseWireId(*geometryStr)
		if err != nil {
			logger.Error(err.Error())
			return -1
		}
	}

	partition, err := chaninfo.ParsePartition(configuration.Partition)
	if err != nil {
		logger.Error(err.Error())
		return -1
	}
	context := chaninfo.EventContext{
		Run:       configuration.Run,
		Event:     configuration.Event,
		Partition: partition,
		Timestamp: time.Now(),
	}

	dbConn, err := connect(configuration)
	if err != nil {
		message := fmt.Errorf("Error connection to database: %w", err)
		logger.Error(message.Error())
		return -1
	}
	defer dbConn.Close()

	if *initDB {
		if err := chaninfo.CreateSchema(dbConn); err != nil {
			logger.Error(err.Error())
			return -1
		}
		return 0
	}

	var metrics *chaninfo.Metrics
	if *printMetrics {
		registry := prometheus.NewRegistry()
		metrics = chaninfo.NewMetrics(registry)
		defer writeMetrics(registry, out)
	}

	tables, err := chaninfo.NewSQLTables(dbConn, configuration.CacheSize, metrics)
	if err != nil {
		logger.Error(err.Error())
		return -1
	}
	channelInfo := chaninfo.NewChannelInfo(tables, metrics)
	if configuration.OverrideFile != "" {
		overrides, err := chaninfo.LoadOverrideFile(configuration.OverrideFile)
		if err != nil {
			logger.Error(err.Error())
			return -1
		}
		channelInfo.SetOverrides(overrides)
	}
	channelInfo.SetContext(context)

	if configuration.FileOut != "" {
		err := chaninfo.WriteMappings(configuration.FileOut, context, channelInfo.Mappings())
		if err != nil {
			message := fmt.Errorf("Error writing channel map: %w", err)
			logger.Error(message.Error())
			return -1
		}
		if !request.findWire && !request.findChannel && !request.findGeometry && !request.findASIC {
			return 0
		}
	}

	return lookup(channelInfo, request, out)
}

func writeMetrics(registry *prometheus.Registry, out io.Writer) {
	families, err := registry.Gather()
	if err != nil {
		message := fmt.Errorf("Error gathering metrics: %w", err)
		logger.Error(message.Error())
		return
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(out, family); err != nil {
			message := fmt.Errorf("Error writing metrics: %w", err)
			logger.Error(message.Error())
			return
		}
	}
}

func connect(config chaninfo.Configuration) (*sqlx.DB, error) {
	if config.Driver != "" && config.Driver != "mysql" {
		return chaninfo.OpenDatabase(config.Driver, config.DSN)
	}
	return chaninfo.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
}

func lookup(channelInfo *chaninfo.ChannelInfo, request lookupRequest, out io.Writer) int {
	if request.findWire {
		if request.channel.IsValid() {
			fmt.Fprintln(out, channelInfo.GetWireFromChannel(request.channel))
			return 0
		}
		if request.geometry.IsValid() {
			fmt.Fprintln(out, channelInfo.GetWireFromGeometry(request.geometry))
			return 0
		}
		fmt.Fprintln(out, "Invalid inputs")
		return -1
	}

	if request.findChannel {
		if request.wire != -1 {
			fmt.Fprintln(out, channelInfo.GetChannelFromWire(request.wire, 0))
			return 0
		}
		if request.geometry.IsValid() {
			fmt.Fprintln(out, channelInfo.GetChannel(request.geometry, 0))
			return 0
		}
		fmt.Fprintln(out, "Invalid inputs")
		return -1
	}

	if request.findGeometry {
		var id chaninfo.GeometryId
		switch {
		case request.wire != -1:
			id = channelInfo.GetGeometryFromWire(request.wire)
		case request.channel.IsValid():
			id = channelInfo.GetGeometry(request.channel)
		default:
			fmt.Fprintln(out, "Invalid inputs")
			return -1
		}
		if !id.IsValid() {
			fmt.Fprintln(out, "Invalid geometry")
			return -1
		}
		if !id.IsWire() {
			fmt.Fprintln(out, "Not a wire")
			return -1
		}
		fmt.Fprintf(out, "    %v\n", id)
		return 0
	}

	if request.findASIC {
		channel := request.channel
		if request.wire != -1 {
			channel = channelInfo.GetChannelFromWire(request.wire, 0)
		} else if request.geometry.IsValid() {
			channel = channelInfo.GetChannel(request.geometry, 0)
		}
		if !channel.IsValid() {
			fmt.Fprintln(out, "Invalid inputs")
			return -1
		}
		fmt.Fprintf(out, "    MB: %d ASIC: %d Chan: %d\n",
			channelInfo.GetMotherboard(channel),
			channelInfo.GetASIC(channel),
			channelInfo.GetASICChannel(channel))
		return 0
	}

	usage(out)
	return -1
}
